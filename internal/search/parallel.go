package search

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// defaultSplitMoves is the move-stack length at which the search tree is
// split into worker subtrees: 3 moves beyond the fixed first one, i.e.
// four placed residues.
const defaultSplitMoves = 3

// sharedBest is the cross-worker improvement state: the score drives
// pruning through a lock-free atomic, the move list is published under a
// short critical section that bound reads never take.
type sharedBest struct {
	score atomic.Int64

	mu        sync.Mutex
	published int // best score actually published under mu
	ck        *checkpointFile
	done      []bool
	next      int // lowest subtree index not yet completed
}

// improve publishes (score, hash) if it strictly improves the shared
// best. The compare-and-swap loop keeps the hot path lock-free; the move
// list is installed under the mutex, which re-checks the score so late
// arrivals cannot overwrite a better publication.
func (s *sharedBest) improve(score int, hash []lattice.Move, p *lattice.Protein) error {
	for {
		cur := s.score.Load()
		if int64(score) >= cur {
			return nil
		}
		if !s.score.CompareAndSwap(cur, int64(score)) {
			continue
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if score >= s.published {
			return nil
		}
		s.published = score
		p.SetBest(score, hash)
		if s.ck != nil {
			return s.ck.write(p, s.next, false)
		}
		return nil
	}
}

// finishSubtree records subtree completion and checkpoints the advanced
// contiguous frontier.
func (s *sharedBest) finishSubtree(idx int, p *lattice.Protein) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done[idx] = true
	for s.next < len(s.done) && s.done[s.next] {
		s.next++
	}
	if s.ck != nil {
		return s.ck.write(p, s.next, false)
	}
	return nil
}

// DepthFirstBnBParallel distributes the branch-and-bound search across
// worker goroutines. Work is split by enumerating all partial
// conformations at a fixed split depth; each subtree runs the serial
// algorithm against the shared bound. The final best score equals the
// serial result; the move list may be any of the tied optima. workers <=
// 0 selects runtime.GOMAXPROCS(0).
func DepthFirstBnBParallel(p *lattice.Protein, mode BoundMode, workers int) error {
	return depthFirstBnBParallel(p, mode, workers, os.Getenv(CacheDirEnv))
}

func depthFirstBnBParallel(p *lattice.Protein, mode BoundMode, workers int, cacheDir string) error {
	n := p.Len()
	if n-1 <= defaultSplitMoves {
		// Too short to split; the serial search answers immediately.
		return DepthFirstBnBWithCache(p, mode, cacheDir)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p.Reset()

	prefixes, err := splitPrefixes(p, defaultSplitMoves)
	if err != nil {
		return err
	}

	shared := &sharedBest{done: make([]bool, len(prefixes)), published: 1}
	shared.score.Store(1) // sentinel: no conformation recorded yet
	first := 0
	if cacheDir != "" {
		shared.ck = newCheckpointFile(cacheDir, "depth_first_bnb_parallel", p)
		state, err := shared.ck.load()
		if err != nil {
			return err
		}
		if state != nil && !state.Complete {
			if state.BestHash != nil {
				p.SetBest(state.BestScore, state.BestHash)
				shared.score.Store(int64(state.BestScore))
				shared.published = state.BestScore
			}
			first = state.NextSubtree
			for i := 0; i < first; i++ {
				shared.done[i] = true
			}
			shared.next = first
		}
	}

	jobs := make(chan int)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wp := p.Clone()
			b := newBounder(wp, mode)
			for idx := range jobs {
				if err := searchSubtree(wp, b, prefixes[idx], shared, p); err != nil {
					errs <- err
					return
				}
				if err := shared.finishSubtree(idx, p); err != nil {
					errs <- err
					return
				}
			}
			// Fold this worker's work into the engine the caller sees.
			shared.mu.Lock()
			p.AddCounters(wp.SolutionsChecked(), wp.AminosPlaced()-1)
			shared.mu.Unlock()
		}()
	}

	var firstErr error
	for idx := first; idx < len(prefixes); idx++ {
		select {
		case err := <-errs:
			firstErr = err
		case jobs <- idx:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
	if firstErr == nil {
		select {
		case firstErr = <-errs:
		default:
		}
	}
	if firstErr != nil {
		return firstErr
	}

	if shared.ck != nil {
		if err := shared.ck.write(p, len(prefixes), true); err != nil {
			return err
		}
	}
	if h := p.BestHash(); h != nil {
		return p.SetHash(h, false)
	}
	return nil
}

// splitPrefixes enumerates the symmetry-reduced move prefixes of the
// given length, in depth-first order. The enumeration runs untracked on a
// private engine so the caller's counters only reflect real search work.
func splitPrefixes(p *lattice.Protein, moves int) ([][]lattice.Move, error) {
	e := p.Clone()
	if err := e.PlaceAmino(1, false); err != nil {
		return nil, err
	}
	var out [][]lattice.Move
	var rec func() error
	rec = func() error {
		if e.CurLen() == moves+1 {
			out = append(out, e.HashFold())
			return nil
		}
		for _, m := range movesFor(e) {
			if !e.IsValid(m) {
				continue
			}
			if err := e.PlaceAmino(m, false); err != nil {
				return err
			}
			if err := rec(); err != nil {
				return err
			}
			if err := e.RemoveAmino(); err != nil {
				return err
			}
		}
		return nil
	}
	if err := rec(); err != nil {
		return nil, err
	}
	return out, nil
}

// searchSubtree replays a prefix untracked and runs the bounded
// depth-first walk below it, reading the shared bound on every prune
// check and publishing strict improvements.
func searchSubtree(wp *lattice.Protein, b *bounder, prefix []lattice.Move, shared *sharedBest, root *lattice.Protein) error {
	if err := wp.SetHash(prefix, false); err != nil {
		return err
	}
	n := wp.Len()
	frames := []frame{{moves: movesFor(wp)}}
	for len(frames) > 0 {
		f := &frames[len(frames)-1]
		advanced := false
		for f.next < len(f.moves) {
			m := f.moves[f.next]
			f.next++
			if !wp.IsValid(m) {
				continue
			}
			if int64(wp.Score()+wp.BondDelta(m)-b.bound(m)) >= shared.score.Load() {
				continue
			}
			if err := wp.PlaceAmino(m, true); err != nil {
				return err
			}
			if wp.CurLen() == n {
				if wp.RecordSolution() {
					if err := shared.improve(wp.Score(), wp.HashFold(), root); err != nil {
						return err
					}
				}
				if err := wp.RemoveAmino(); err != nil {
					return err
				}
				continue
			}
			frames = append(frames, frame{moves: movesFor(wp)})
			advanced = true
			break
		}
		if advanced {
			continue
		}
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			if err := wp.RemoveAmino(); err != nil {
				return err
			}
		}
	}
	return nil
}

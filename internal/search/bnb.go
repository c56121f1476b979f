package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// BoundMode selects the pruning bound of the branch-and-bound searches.
type BoundMode int

const (
	// Naive bounds the remaining score by the best bond every unplaced
	// residue could realise, regardless of geometry.
	Naive BoundMode = iota
	// ReachPrune refines Naive by discounting unplaced residues whose
	// geometric reach excludes every potential negative-bond partner.
	ReachPrune
)

// ParseBoundMode resolves the configuration names "naive" and
// "reach_prune".
func ParseBoundMode(s string) (BoundMode, error) {
	switch strings.ToLower(s) {
	case "", "naive":
		return Naive, nil
	case "reach_prune":
		return ReachPrune, nil
	}
	return Naive, fmt.Errorf("unknown branch-and-bound mode %q", s)
}

// String returns the configuration name of the mode.
func (m BoundMode) String() string {
	if m == ReachPrune {
		return "reach_prune"
	}
	return "naive"
}

// bounder computes the upper bound on the remaining negative contribution
// for a candidate move, before the move is placed.
type bounder struct {
	p    *lattice.Protein
	mode BoundMode

	// suffix[k] is the geometry-free potential of residues k..n-1: the
	// sum of their best bond magnitudes times the 2d-1 lattice contacts a
	// placement can realise at most.
	suffix []int
}

func newBounder(p *lattice.Protein, mode BoundMode) *bounder {
	n := p.Len()
	perContact := 2*p.Dim() - 1
	suffix := make([]int, n+1)
	for k := n - 1; k >= 0; k-- {
		suffix[k] = suffix[k+1] + p.MaxNegativeBond(k)*perContact
	}
	return &bounder{p: p, mode: mode, suffix: suffix}
}

// bound returns the potential of the residues left unplaced after the
// candidate move; the residue the move places is index p.CurLen().
func (b *bounder) bound(m lattice.Move) int {
	if b.mode == Naive {
		return b.suffix[b.p.CurLen()+1]
	}
	return b.reachBound(m)
}

// reachBound keeps an unplaced residue's potential only while some
// negative-bond partner stays geometrically reachable: a placed residue
// whose Manhattan distance from the prospective head fits in the
// remaining chain length (with matching lattice parity), or an earlier
// unplaced residue at an odd chain separation of at least 3.
func (b *bounder) reachBound(m lattice.Move) int {
	p := b.p
	n, dim := p.Len(), p.Dim()
	head := p.CurLen() // index of the residue the move places
	newHead := p.LastPos()
	newHead[m.Axis()] += m.Sign()
	placed := p.Positions()
	perContact := 2*dim - 1

	total := 0
	for k := head + 1; k < n; k++ {
		w := p.MaxNegativeBond(k)
		if w == 0 {
			continue
		}
		steps := k - head
		reachable := false
		for j := 0; j <= head && !reachable; j++ {
			if k-j < 2 || p.BondBetween(k, j) >= 0 {
				continue
			}
			pos := newHead
			if j < head {
				pos = placed[j]
			}
			dist := pos.Manhattan(newHead)
			reachable = dist <= steps+1 && (dist+steps)%2 == 1
		}
		for j := head + 1; j < k && !reachable; j++ {
			reachable = p.BondBetween(k, j) < 0 && k-j >= 3 && (k-j)%2 == 1
		}
		if reachable {
			total += w * perContact
		}
	}
	return total
}

// CacheDirEnv names the environment variable that enables checkpointing
// by pointing at a cache directory.
const CacheDirEnv = "PROSPR_CACHE_DIR"

// DepthFirstBnB runs the depth-first branch-and-bound search and leaves p
// folded into the best conformation. Checkpointing is enabled when
// PROSPR_CACHE_DIR names a cache directory.
func DepthFirstBnB(p *lattice.Protein, mode BoundMode) error {
	return DepthFirstBnBWithCache(p, mode, os.Getenv(CacheDirEnv))
}

// DepthFirstBnBWithCache is DepthFirstBnB with an explicit cache
// directory; an empty directory disables checkpointing.
func DepthFirstBnBWithCache(p *lattice.Protein, mode BoundMode, cacheDir string) error {
	p.Reset()
	n := p.Len()
	if n < 2 {
		p.RecordSolution()
		return nil
	}

	var ck *checkpointFile
	if cacheDir != "" {
		ck = newCheckpointFile(cacheDir, "depth_first_bnb", p)
		state, err := ck.load()
		if err != nil {
			return err
		}
		if state != nil && !state.Complete && state.BestHash != nil {
			// Resume an interrupted run: seed the bound so pruning picks
			// up where the previous run left off.
			p.SetBest(state.BestScore, state.BestHash)
		}
	}

	if err := p.PlaceAmino(1, true); err != nil {
		return err
	}
	best := scoreSentinel(p)
	if n == 2 {
		p.RecordSolution()
		return finishBnB(p, ck, 0)
	}

	b := newBounder(p, mode)
	frames := []frame{{moves: movesFor(p)}}
	for len(frames) > 0 {
		f := &frames[len(frames)-1]
		advanced := false
		for f.next < len(f.moves) {
			m := f.moves[f.next]
			f.next++
			if !p.IsValid(m) {
				continue
			}
			if p.Score()+p.BondDelta(m)-b.bound(m) >= best {
				continue
			}
			if err := p.PlaceAmino(m, true); err != nil {
				return err
			}
			if p.CurLen() == n {
				if p.RecordSolution() {
					best = p.Score()
					if ck != nil {
						if err := ck.write(p, 0, false); err != nil {
							return err
						}
					}
				}
				if err := p.RemoveAmino(); err != nil {
					return err
				}
				continue
			}
			frames = append(frames, frame{moves: movesFor(p)})
			advanced = true
			break
		}
		if advanced {
			continue
		}
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			if err := p.RemoveAmino(); err != nil {
				return err
			}
		}
	}

	return finishBnB(p, ck, 0)
}

// scoreSentinel returns the pruning bound to start from: the recorded
// best when one exists (checkpoint resume), otherwise the +1 sentinel
// that no real conformation can reach.
func scoreSentinel(p *lattice.Protein) int {
	if s, ok := p.BestScore(); ok {
		return s
	}
	return 1
}

// finishBnB writes the final checkpoint and folds p into its best
// conformation.
func finishBnB(p *lattice.Protein, ck *checkpointFile, nextSubtree int) error {
	if ck != nil {
		if err := ck.write(p, nextSubtree, true); err != nil {
			return err
		}
	}
	if h := p.BestHash(); h != nil {
		return p.SetHash(h, false)
	}
	return nil
}

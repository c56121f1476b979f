// Package search implements the conformation search algorithms over the
// lattice engine: exhaustive depth-first enumeration, depth-first
// branch-and-bound with naive and reach-prune bounds, a parallel
// branch-and-bound over worker goroutines, and beam search. Long
// branch-and-bound runs can checkpoint their state to a cache directory
// and resume.
package search

import (
	"github.com/okkevaneck/prospr/internal/lattice"
)

// frame is one level of the explicit depth-first stack: the moves still
// to be tried for the residue chosen at this depth.
type frame struct {
	moves []lattice.Move
	next  int
}

// movesFor returns the canonical move order for the residue about to be
// placed. Residue 1 is fixed to move 1 by the callers; residue 2 tries
// only the positive axes, which quotients out the lattice reflections;
// every later residue tries all moves in ascending signed order.
func movesFor(p *lattice.Protein) []lattice.Move {
	dim := p.Dim()
	if p.CurLen() == 2 {
		moves := make([]lattice.Move, 0, dim)
		for a := 1; a <= dim; a++ {
			moves = append(moves, lattice.Move(a))
		}
		return moves
	}
	moves := make([]lattice.Move, 0, 2*dim)
	for m := -dim; m <= dim; m++ {
		if m != 0 {
			moves = append(moves, lattice.Move(m))
		}
	}
	return moves
}

// DepthFirst enumerates every symmetry-reduced self-avoiding walk of the
// chain and leaves p folded into the best conformation found. The
// engine's SolutionsChecked and AminosPlaced counters reflect the full
// enumeration.
func DepthFirst(p *lattice.Protein) error {
	p.Reset()
	n := p.Len()
	if n < 2 {
		p.RecordSolution()
		return nil
	}
	if err := p.PlaceAmino(1, true); err != nil {
		return err
	}
	if n == 2 {
		p.RecordSolution()
		return nil
	}

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
			if err := p.PlaceAmino(m, true); err != nil {
				return err
			}
			if p.CurLen() == n {
				p.RecordSolution()
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

	if h := p.BestHash(); h != nil {
		return p.SetHash(h, false)
	}
	return nil
}

package search

import (
	"github.com/okkevaneck/prospr/internal/lattice"
)

// beamNode is one partial conformation in the beam frontier.
type beamNode struct {
	moves []lattice.Move
	score int
}

// prioHeap is a binary heap popping the lowest priority first. Pops use
// the classic hole-to-leaf-then-sift-up replacement scheme, which fixes
// the order of equal-priority items given the push order; the beam's
// width trimming depends on that order being deterministic.
type prioHeap []beamNode

// after reports whether a is ordered after b, i.e. pops later.
func (h prioHeap) after(a, b beamNode) bool {
	return a.score > b.score
}

func (h *prioHeap) push(n beamNode) {
	v := *h
	v = append(v, n)
	hole := len(v) - 1
	for hole > 0 {
		parent := (hole - 1) / 2
		if !h.after(v[parent], n) {
			break
		}
		v[hole] = v[parent]
		hole = parent
	}
	v[hole] = n
	*h = v
}

func (h *prioHeap) pop() beamNode {
	v := *h
	top := v[0]
	value := v[len(v)-1]
	v = v[:len(v)-1]
	*h = v
	if len(v) == 0 {
		return top
	}
	n := len(v)
	hole := 0
	second := 0
	for second < (n-1)/2 {
		second = 2 * (second + 1)
		if h.after(v[second], v[second-1]) {
			second--
		}
		v[hole] = v[second]
		hole = second
	}
	if n%2 == 0 && second == (n-2)/2 {
		second = 2 * (second + 1)
		v[hole] = v[second-1]
		hole = second - 1
	}
	for hole > 0 {
		parent := (hole - 1) / 2
		if !h.after(v[parent], value) {
			break
		}
		v[hole] = v[parent]
		hole = parent
	}
	v[hole] = value
	return top
}

// movesLess orders move lists lexicographically by signed value.
func movesLess(a, b []lattice.Move) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// BeamSearch runs a level-synchronous beam search of the given width and
// folds p into the best conformation of the final frontier. A width of 0
// or below, or one at least as large as a level, leaves the frontier
// untrimmed, reducing the search to exhaustive breadth-first. The engine
// ends with SolutionsChecked at 1: only the returned conformation is
// evaluated.
func BeamSearch(p *lattice.Protein, width int) error {
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

	dim := p.Dim()
	frontier := []beamNode{{moves: []lattice.Move{1}}}
	for len(frontier[0].moves) < n-1 {
		var h prioHeap
		for _, node := range frontier {
			if err := p.SetHash(node.moves, false); err != nil {
				return err
			}
			for m := lattice.Move(dim); m >= lattice.Move(-dim); m-- {
				if m == lattice.NoMove || !p.IsValid(m) {
					continue
				}
				child := make([]lattice.Move, len(node.moves)+1)
				copy(child, node.moves)
				child[len(node.moves)] = m
				h.push(beamNode{moves: child, score: node.score + p.BondDelta(m)})
			}
		}
		if len(h) == 0 {
			// Every frontier member is trapped; keep the longest prefixes.
			break
		}
		keep := len(h)
		if width > 0 && width < keep {
			keep = width
		}
		frontier = frontier[:0]
		for i := 0; i < keep; i++ {
			frontier = append(frontier, h.pop())
		}
	}

	best := frontier[0]
	for _, node := range frontier[1:] {
		if node.score < best.score ||
			(node.score == best.score && movesLess(node.moves, best.moves)) {
			best = node
		}
	}
	if err := p.SetHash(best.moves, true); err != nil {
		return err
	}
	p.RecordSolution()
	return nil
}

// Package lattice models self-avoiding chains on the integer lattice Z^d:
// the move algebra, the amino-acid energy models, and the Protein
// conformation engine with incremental scoring.
package lattice

import (
	"fmt"
	"sort"
	"strings"
)

// scoreUnset is the best-score sentinel used before any complete
// conformation has been recorded. Every real score is <= 0 under the HP
// model, and strict improvement is required to replace it.
const scoreUnset = 1

// site is one occupied lattice cell: which residue sits there and the
// chain moves entering and leaving it. In and Out are 0 at the chain ends.
type site struct {
	index int
	in    Move
	out   Move
}

// Protein is a partially or fully placed chain conformation. Residue 0
// always sits at the origin; every further residue is reachable through
// the move stack. The score is maintained incrementally in O(2d) per
// placement and removal.
type Protein struct {
	seq    string
	dim    int
	model  Model
	maxNeg []int // per residue, magnitude of its best achievable bond

	occ     map[string]*site
	stack   []Move
	lastPos Position

	score int

	solutionsChecked int
	aminosPlaced     int

	bestScore int
	bestHash  []Move
}

// New creates a conformation for the given sequence under the default HP
// model, with residue 0 placed at the origin.
func New(sequence string, dim int) (*Protein, error) {
	return NewWithModel(sequence, dim, HP)
}

// NewWithBonds creates a conformation with an explicit bond table. The
// alphabet is the set of symbols the table names.
func NewWithBonds(sequence string, dim int, bonds BondTable) (*Protein, error) {
	if len(bonds) == 0 {
		return nil, fmt.Errorf("%w: empty bond table", ErrInvalidInput)
	}
	return NewWithModel(sequence, dim, modelForBonds(bonds))
}

// NewWithModel creates a conformation under the given model. It fails
// with ErrInvalidInput when the sequence is empty, the dimension is below
// 2, or a sequence symbol is missing from the model alphabet.
func NewWithModel(sequence string, dim int, model Model) (*Protein, error) {
	if len(sequence) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrInvalidInput)
	}
	if dim < 2 {
		return nil, fmt.Errorf("%w: dimension %d, need at least 2", ErrInvalidInput, dim)
	}
	maxNeg := make([]int, len(sequence))
	for i := 0; i < len(sequence); i++ {
		s := sequence[i]
		if !containsByte(model.Alphabet, s) {
			return nil, fmt.Errorf("%w: symbol %q not in model alphabet %q",
				ErrInvalidInput, string(s), model.Alphabet)
		}
		maxNeg[i] = model.Bonds.MaxNegative(s)
	}
	p := &Protein{
		seq:    sequence,
		dim:    dim,
		model:  model,
		maxNeg: maxNeg,
		occ:    make(map[string]*site, len(sequence)),
	}
	p.placeOrigin()
	return p, nil
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// placeOrigin installs residue 0 and resets every counter to the
// freshly-constructed state.
func (p *Protein) placeOrigin() {
	origin := Origin(p.dim)
	p.occ[origin.key()] = &site{index: 0}
	p.lastPos = origin
	p.stack = p.stack[:0]
	p.score = 0
	p.solutionsChecked = 0
	p.aminosPlaced = 1
	p.bestScore = scoreUnset
	p.bestHash = nil
}

// Clone returns a fresh conformation over the same inputs, wound back to
// residue 0. Worker tasks use it to obtain private engines.
func (p *Protein) Clone() *Protein {
	c, err := NewWithModel(p.seq, p.dim, p.model)
	if err != nil {
		// The receiver already validated these inputs.
		panic(err)
	}
	return c
}

// Sequence returns the residue sequence.
func (p *Protein) Sequence() string { return p.seq }

// Dim returns the lattice dimension.
func (p *Protein) Dim() int { return p.dim }

// Len returns the number of residues in the sequence.
func (p *Protein) Len() int { return len(p.seq) }

// Model returns the energy model in use.
func (p *Protein) Model() Model { return p.model }

// Bonds returns the bond table in use.
func (p *Protein) Bonds() BondTable { return p.model.Bonds }

// CurLen returns the number of residues currently placed.
func (p *Protein) CurLen() int { return len(p.stack) + 1 }

// Score returns the energy of the current partial conformation.
func (p *Protein) Score() int { return p.score }

// LastMove returns the most recent move, or NoMove at length 1.
func (p *Protein) LastMove() Move {
	if len(p.stack) == 0 {
		return NoMove
	}
	return p.stack[len(p.stack)-1]
}

// LastPos returns the position of the chain head.
func (p *Protein) LastPos() Position { return p.lastPos.Clone() }

// SolutionsChecked returns how many complete conformations have been
// evaluated since construction or the last Reset.
func (p *Protein) SolutionsChecked() int { return p.solutionsChecked }

// AminosPlaced returns how many tracked placements have been performed,
// counting residue 0.
func (p *Protein) AminosPlaced() int { return p.aminosPlaced }

// MaxNegativeBond returns the magnitude of the best bond residue i could
// ever realise, regardless of geometry.
func (p *Protein) MaxNegativeBond(i int) int { return p.maxNeg[i] }

// AminoAt returns the residue at sequence index i with its alphabet and
// chain positions.
func (p *Protein) AminoAt(i int) AminoAcid {
	s := p.seq[i]
	return AminoAcid{Symbol: s, Alphabet: strings.IndexByte(p.model.Alphabet, s), Chain: i}
}

// BondBetween returns the bond value of residues i and j.
func (p *Protein) BondBetween(i, j int) int {
	return p.model.Bonds.Bond(p.seq[i], p.seq[j])
}

// IsValid reports whether move m may be applied at the current head: it
// must be a legal encoding, must not reverse the previous move, and must
// lead to an unoccupied cell.
func (p *Protein) IsValid(m Move) bool {
	if !m.InRange(p.dim) {
		return false
	}
	if last := p.LastMove(); last != NoMove && m == last.Inverse() {
		return false
	}
	_, taken := p.occ[p.lastPos.Step(m).key()]
	return !taken
}

// BondDelta returns the score change PlaceAmino(m) would apply: the sum
// of bond values between the next residue and every occupied lattice
// neighbour of its target cell, excluding its chain predecessor.
func (p *Protein) BondDelta(m Move) int {
	target := p.lastPos.Step(m)
	next := p.CurLen()
	headKey := p.lastPos.key()
	delta := 0
	for axis := 1; axis <= p.dim; axis++ {
		for _, dir := range [2]Move{Move(axis), Move(-axis)} {
			nb := target.Step(dir)
			k := nb.key()
			if k == headKey {
				continue
			}
			if s, ok := p.occ[k]; ok {
				delta += p.BondBetween(next, s.index)
			}
		}
	}
	return delta
}

// PlaceAmino advances the head by m, placing the next residue. When track
// is set the placement counts toward AminosPlaced; lookahead placements
// performed during bound computation pass track=false. Fails with
// ErrIllegalMove when the chain is complete or the move is invalid.
func (p *Protein) PlaceAmino(m Move, track bool) error {
	if p.CurLen() >= len(p.seq) {
		return fmt.Errorf("%w: chain already complete", ErrIllegalMove)
	}
	if !p.IsValid(m) {
		return fmt.Errorf("%w: move %d at residue %d", ErrIllegalMove, int(m), p.CurLen())
	}
	p.score += p.BondDelta(m)

	target := p.lastPos.Step(m)
	p.occ[p.lastPos.key()].out = m
	p.occ[target.key()] = &site{index: p.CurLen(), in: m}
	p.lastPos = target
	p.stack = append(p.stack, m)
	if track {
		p.aminosPlaced++
	}
	return nil
}

// RemoveAmino undoes the most recent placement, restoring the engine to
// the bit-identical prior state. Fails with ErrIllegalMove at length 1.
func (p *Protein) RemoveAmino() error {
	if p.CurLen() < 2 {
		return fmt.Errorf("%w: cannot remove residue 0", ErrIllegalMove)
	}
	m := p.stack[len(p.stack)-1]
	head := p.lastPos
	idx := p.CurLen() - 1
	prev := head.Step(m.Inverse())
	prevKey := prev.key()

	delete(p.occ, head.key())
	for axis := 1; axis <= p.dim; axis++ {
		for _, dir := range [2]Move{Move(axis), Move(-axis)} {
			k := head.Step(dir).key()
			if k == prevKey {
				continue
			}
			if s, ok := p.occ[k]; ok {
				p.score -= p.BondBetween(idx, s.index)
			}
		}
	}
	p.occ[prevKey].out = NoMove
	p.stack = p.stack[:len(p.stack)-1]
	p.lastPos = prev
	return nil
}

// HashFold returns a copy of the move stack: the canonical serialisation
// of the current conformation.
func (p *Protein) HashFold() []Move {
	h := make([]Move, len(p.stack))
	copy(h, p.stack)
	return h
}

// SetHash winds the chain back to residue 0 and applies the given moves
// in order. It fails with ErrIllegalMove on the first infeasible move,
// leaving the feasible prefix applied.
func (p *Protein) SetHash(moves []Move, track bool) error {
	p.rewind()
	for i, m := range moves {
		if err := p.PlaceAmino(m, track); err != nil {
			return fmt.Errorf("hash position %d: %w", i, err)
		}
	}
	return nil
}

// rewind removes every residue beyond the origin.
func (p *Protein) rewind() {
	for p.CurLen() > 1 {
		// Cannot fail above length 1.
		_ = p.RemoveAmino()
	}
}

// Reset winds the chain back to residue 0 and clears the counters and the
// best conformation, restoring the freshly-constructed state.
func (p *Protein) Reset() {
	p.rewind()
	p.solutionsChecked = 0
	p.aminosPlaced = 1
	p.bestScore = scoreUnset
	p.bestHash = nil
}

// RecordSolution counts a complete conformation and, on strict
// improvement, keeps its score and move list as the best seen. It reports
// whether the best was updated.
func (p *Protein) RecordSolution() bool {
	p.solutionsChecked++
	if p.score < p.bestScore {
		p.bestScore = p.score
		p.bestHash = p.HashFold()
		return true
	}
	return false
}

// BestScore returns the best recorded score, and whether any complete
// conformation has been recorded yet.
func (p *Protein) BestScore() (int, bool) {
	if p.bestHash == nil && p.bestScore == scoreUnset {
		return 0, false
	}
	return p.bestScore, true
}

// BestHash returns a copy of the best recorded move list, or nil.
func (p *Protein) BestHash() []Move {
	if p.bestHash == nil {
		return nil
	}
	h := make([]Move, len(p.bestHash))
	copy(h, p.bestHash)
	return h
}

// SetBest overrides the recorded best conformation. Checkpoint restores
// and parallel workers publish through this.
func (p *Protein) SetBest(score int, hash []Move) {
	p.bestScore = score
	p.bestHash = make([]Move, len(hash))
	copy(p.bestHash, hash)
}

// AddCounters folds another engine's counters into this one. The parallel
// search aggregates its workers' work this way.
func (p *Protein) AddCounters(solutionsChecked, aminosPlaced int) {
	p.solutionsChecked += solutionsChecked
	p.aminosPlaced += aminosPlaced
}

// Positions returns the chain positions in placement order.
func (p *Protein) Positions() []Position {
	out := make([]Position, 0, p.CurLen())
	cur := Origin(p.dim)
	out = append(out, cur.Clone())
	for _, m := range p.stack {
		cur.step(m)
		out = append(out, cur.Clone())
	}
	return out
}

// SiteAt returns the residue index and chain moves at a position, if
// occupied. In and Out are NoMove at the respective chain ends.
func (p *Protein) SiteAt(pos Position) (index int, in, out Move, ok bool) {
	s, found := p.occ[pos.key()]
	if !found {
		return 0, NoMove, NoMove, false
	}
	return s.index, s.in, s.out, true
}

// GetBonds returns the scoring pairs of the current conformation as
// residue index pairs, restricted to pairs with a non-zero bond value.
// Pairs are ordered by ascending smaller then larger index, and each is
// emitted twice, (i, j) followed by (j, i), so callers may iterate from
// either endpoint.
func (p *Protein) GetBonds() [][2]int {
	var pairs [][2]int
	positions := p.Positions()
	for i, pos := range positions {
		for axis := 1; axis <= p.dim; axis++ {
			for _, dir := range [2]Move{Move(axis), Move(-axis)} {
				s, ok := p.occ[pos.Step(dir).key()]
				if !ok {
					continue
				}
				j := s.index
				if j-i < 2 {
					continue
				}
				if p.BondBetween(i, j) == 0 {
					continue
				}
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a][0] != pairs[b][0] {
			return pairs[a][0] < pairs[b][0]
		}
		return pairs[a][1] < pairs[b][1]
	})
	out := make([][2]int, 0, 2*len(pairs))
	for _, pr := range pairs {
		out = append(out, pr, [2]int{pr[1], pr[0]})
	}
	return out
}

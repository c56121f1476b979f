package lattice

// ScoringAmino is a placed residue that could contribute to the score,
// with the chain moves at its cell. In is the move that reached the
// residue (NoMove for residue 0) and Out the move that leaves it (NoMove
// for the chain head).
type ScoringAmino struct {
	Pos Position
	In  Move
	Out Move
}

// ScoringAminos collects, in placement order, every placed residue whose
// best achievable bond value is negative. Visualisation and export walk
// the chain through this view.
func ScoringAminos(p *Protein) []ScoringAmino {
	var out []ScoringAmino
	cur := Origin(p.Dim())
	idx, _, next, _ := p.SiteAt(cur)
	if p.MaxNegativeBond(idx) > 0 {
		out = append(out, ScoringAmino{Pos: cur.Clone(), In: NoMove, Out: next})
	}
	for next != NoMove {
		cur.step(next)
		var in Move
		idx, in, next, _ = p.SiteAt(cur)
		if p.MaxNegativeBond(idx) > 0 {
			out = append(out, ScoringAmino{Pos: cur.Clone(), In: in, Out: next})
		}
	}
	return out
}

// ScoringPairs returns the position pairs of residues that realise a
// bond in the current conformation. Residues are scanned in placement
// order and, per residue, the positive axes in ascending order; the
// partner is the neighbour one step along that axis. Axes already used by
// the chain bonds at the residue are skipped, so each contact is emitted
// exactly once.
func ScoringPairs(p *Protein) [][2]Position {
	aminos := ScoringAminos(p)
	keys := make(map[string]bool, len(aminos))
	for _, a := range aminos {
		keys[a.Pos.key()] = true
	}
	var pairs [][2]Position
	for _, a := range aminos {
		for axis := 1; axis <= p.Dim(); axis++ {
			m := Move(axis)
			if a.In == m.Inverse() || a.Out == m {
				continue
			}
			other := a.Pos.Step(m)
			if keys[other.key()] {
				pairs = append(pairs, [2]Position{a.Pos.Clone(), other})
			}
		}
	}
	return pairs
}

// PlacedAmino pairs a chain position with its residue symbol.
type PlacedAmino struct {
	Pos    Position
	Symbol byte
}

// OrderedPositions returns the placed residues in placement order with
// their symbols.
func OrderedPositions(p *Protein) []PlacedAmino {
	positions := p.Positions()
	out := make([]PlacedAmino, len(positions))
	for i, pos := range positions {
		out[i] = PlacedAmino{Pos: pos, Symbol: p.Sequence()[i]}
	}
	return out
}

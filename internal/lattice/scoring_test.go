package lattice

import "testing"

func TestScoringAminos(t *testing.T) {
	p := mustNew(t, "HPPHPPHH", 2)
	if err := p.SetHash([]Move{1, 2, -1, -1, -2}, true); err != nil {
		t.Fatal(err)
	}

	got := ScoringAminos(p)
	// H residues 0 and 3 are placed; P residues never score under HP.
	want := []ScoringAmino{
		{Pos: Position{0, 0}, In: NoMove, Out: 1},
		{Pos: Position{0, 1}, In: -1, Out: -1},
	}
	if len(got) != len(want) {
		t.Fatalf("ScoringAminos() returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Pos.Equal(want[i].Pos) || got[i].In != want[i].In || got[i].Out != want[i].Out {
			t.Errorf("ScoringAminos()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScoringPairs(t *testing.T) {
	p := mustNew(t, "HPPHPPHH", 2)
	if err := p.SetHash([]Move{1, 2, -1, -1, -2}, true); err != nil {
		t.Fatal(err)
	}

	pairs := ScoringPairs(p)
	if len(pairs) != 1 {
		t.Fatalf("ScoringPairs() = %v, want one pair", pairs)
	}
	if !pairs[0][0].Equal(Position{0, 0}) || !pairs[0][1].Equal(Position{0, 1}) {
		t.Errorf("ScoringPairs()[0] = %v, want [0 0] -> [0 1]", pairs[0])
	}
}

func TestScoringPairsCountMatchesScore(t *testing.T) {
	p := mustNew(t, "HPHHPHHP", 2)
	if err := p.SetHash([]Move{1, 2, -1, -1, -2, -1, 2}, true); err != nil {
		t.Fatal(err)
	}
	pairs := ScoringPairs(p)
	if len(pairs) != -p.Score() {
		t.Errorf("got %d scoring pairs for score %d", len(pairs), p.Score())
	}
}

func TestOrderedPositions(t *testing.T) {
	p := mustNew(t, "HPH", 2)
	if err := p.SetHash([]Move{1, 2}, true); err != nil {
		t.Fatal(err)
	}
	got := OrderedPositions(p)
	wantPos := []Position{{0, 0}, {1, 0}, {1, 1}}
	if len(got) != 3 {
		t.Fatalf("OrderedPositions() returned %d entries", len(got))
	}
	for i := range got {
		if !got[i].Pos.Equal(wantPos[i]) || got[i].Symbol != p.Sequence()[i] {
			t.Errorf("entry %d = %+v, want pos %v symbol %q",
				i, got[i], wantPos[i], string(p.Sequence()[i]))
		}
	}
}

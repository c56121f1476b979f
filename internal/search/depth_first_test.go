package search

import (
	"testing"

	"github.com/okkevaneck/prospr/internal/lattice"
)

func mustNew(t *testing.T, seq string, dim int) *lattice.Protein {
	t.Helper()
	p, err := lattice.New(seq, dim)
	if err != nil {
		t.Fatalf("New(%q, %d): %v", seq, dim, err)
	}
	return p
}

func TestDepthFirst2D(t *testing.T) {
	p := mustNew(t, "PHPHPHPPH", 2)
	if err := DepthFirst(p); err != nil {
		t.Fatalf("DepthFirst: %v", err)
	}
	if p.Score() != -3 {
		t.Errorf("Score() = %d, want -3", p.Score())
	}
	if p.SolutionsChecked() != 1000 {
		t.Errorf("SolutionsChecked() = %d, want 1000", p.SolutionsChecked())
	}
	if p.AminosPlaced() != 1574 {
		t.Errorf("AminosPlaced() = %d, want 1574", p.AminosPlaced())
	}
}

func TestDepthFirst3D(t *testing.T) {
	if testing.Short() {
		t.Skip("full 3D enumeration in short mode")
	}
	p := mustNew(t, "HPPHPHPHPH", 3)
	if err := DepthFirst(p); err != nil {
		t.Fatalf("DepthFirst: %v", err)
	}
	if p.Score() != -4 {
		t.Errorf("Score() = %d, want -4", p.Score())
	}
	if p.SolutionsChecked() != 186455 {
		t.Errorf("SolutionsChecked() = %d, want 186455", p.SolutionsChecked())
	}
	if p.AminosPlaced() != 235818 {
		t.Errorf("AminosPlaced() = %d, want 235818", p.AminosPlaced())
	}
}

func TestDepthFirstLeavesBestApplied(t *testing.T) {
	p := mustNew(t, "HPPHPPHH", 2)
	if err := DepthFirst(p); err != nil {
		t.Fatalf("DepthFirst: %v", err)
	}
	best, ok := p.BestScore()
	if !ok {
		t.Fatal("no best conformation recorded")
	}
	if p.Score() != best {
		t.Errorf("engine left at score %d, best is %d", p.Score(), best)
	}
	if got := p.HashFold(); !hashEqual(got, p.BestHash()) {
		t.Errorf("engine fold %v does not match best hash %v", got, p.BestHash())
	}
	if p.CurLen() != p.Len() {
		t.Errorf("engine left at length %d of %d", p.CurLen(), p.Len())
	}
}

func TestDepthFirstShortChains(t *testing.T) {
	for _, seq := range []string{"H", "HP"} {
		p := mustNew(t, seq, 2)
		if err := DepthFirst(p); err != nil {
			t.Fatalf("DepthFirst(%q): %v", seq, err)
		}
		if p.Score() != 0 {
			t.Errorf("%q: Score() = %d, want 0", seq, p.Score())
		}
		if p.SolutionsChecked() != 1 {
			t.Errorf("%q: SolutionsChecked() = %d, want 1", seq, p.SolutionsChecked())
		}
	}
}

func hashEqual(a, b []lattice.Move) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

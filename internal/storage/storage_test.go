package storage

import (
	"testing"
	"time"

	"github.com/okkevaneck/prospr/internal/lattice"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestFoldRoundTrip(t *testing.T) {
	a := openTestArchive(t)

	rec := &FoldRecord{
		Sequence:  "HPPH",
		Dim:       2,
		Model:     "HP",
		Algorithm: "depth_first",
		Score:     -1,
		Hash:      []lattice.Move{1, 2, -1},
		Elapsed:   5 * time.Millisecond,
		SolvedAt:  time.Now().UTC(),
	}
	if err := a.SaveFold(rec); err != nil {
		t.Fatalf("SaveFold: %v", err)
	}

	got, err := a.LoadFold("HPPH", 2, "HP")
	if err != nil {
		t.Fatalf("LoadFold: %v", err)
	}
	if got == nil {
		t.Fatal("LoadFold returned nil for stored record")
	}
	if got.Score != -1 || got.Sequence != "HPPH" || len(got.Hash) != 3 {
		t.Errorf("LoadFold = %+v", got)
	}

	missing, err := a.LoadFold("HPPH", 3, "HP")
	if err != nil {
		t.Fatalf("LoadFold(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("LoadFold(missing) = %+v, want nil", missing)
	}
}

func TestSaveFoldKeepsBetterScore(t *testing.T) {
	a := openTestArchive(t)

	good := &FoldRecord{Sequence: "HPPH", Dim: 2, Model: "HP", Score: -1}
	if err := a.SaveFold(good); err != nil {
		t.Fatal(err)
	}
	worse := &FoldRecord{Sequence: "HPPH", Dim: 2, Model: "HP", Score: 0}
	if err := a.SaveFold(worse); err != nil {
		t.Fatal(err)
	}

	got, err := a.LoadFold("HPPH", 2, "HP")
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != -1 {
		t.Errorf("archive kept score %d, want the better -1", got.Score)
	}
}

func TestRecordSearch(t *testing.T) {
	a := openTestArchive(t)

	p, err := lattice.New("HPPH", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetHash([]lattice.Move{1, 2, -1}, true); err != nil {
		t.Fatal(err)
	}
	p.RecordSolution()

	if err := a.RecordSearch(p, "depth_first", 10*time.Millisecond); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	if err := a.RecordSearch(p, "beam_search", 3*time.Millisecond); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}

	stats, err := a.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.Searches != 2 {
		t.Errorf("Searches = %d, want 2", stats.Searches)
	}
	if stats.ByAlgorithm["depth_first"] != 1 || stats.ByAlgorithm["beam_search"] != 1 {
		t.Errorf("ByAlgorithm = %v", stats.ByAlgorithm)
	}
	if stats.TotalTime != 13*time.Millisecond {
		t.Errorf("TotalTime = %v, want 13ms", stats.TotalTime)
	}

	folds, err := a.Folds()
	if err != nil {
		t.Fatalf("Folds: %v", err)
	}
	if len(folds) != 1 {
		t.Errorf("Folds() returned %d records, want 1", len(folds))
	}
}

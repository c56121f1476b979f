package dataset

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okkevaneck/prospr/internal/lattice"
)

func TestLoad(t *testing.T) {
	in := "id,sequence\n0,HPPH\n1,PHPHPHPPH\n"
	records, err := Load(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "0" || records[0].Sequence != "HPPH" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Sequence != "PHPHPHPPH" {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	_, err := Load(strings.NewReader("name,value\na,b\n"))
	if !errors.Is(err, lattice.ErrInvalidInput) {
		t.Errorf("bad header: err = %v, want ErrInvalidInput", err)
	}
}

func TestCollectionsResolvePaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "vanEck250")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	data := "id,sequence\n0,HHPPHH\n"
	if err := os.WriteFile(filepath.Join(sub, "HP10.csv"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := VanEck250(dir, 10)
	if err != nil {
		t.Fatalf("VanEck250: %v", err)
	}
	if len(records) != 1 || records[0].Sequence != "HHPPHH" {
		t.Errorf("records = %+v", records)
	}
}

func TestRandomSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seq := RandomSequence(50, 0.5, rng)
	if len(seq) != 50 {
		t.Fatalf("len = %d, want 50", len(seq))
	}
	for i := 0; i < len(seq); i++ {
		if seq[i] != 'H' && seq[i] != 'P' {
			t.Fatalf("unexpected symbol %q", string(seq[i]))
		}
	}
}

func TestGenerateHRatio(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(42))
	const length, size = 20, 25

	if err := GenerateHRatio(dir, length, size, rng); err != nil {
		t.Fatalf("GenerateHRatio: %v", err)
	}

	windows := hRatioWindows()
	for _, w := range windows {
		records, err := VanEckHRatio(dir, length, w.high)
		if err != nil {
			t.Fatalf("window %.1f: %v", w.high, err)
		}
		if len(records) != size {
			t.Errorf("window %.1f: %d records, want %d", w.high, len(records), size)
		}
		for _, rec := range records {
			h := strings.Count(rec.Sequence, "H")
			ratio := float64(h) / float64(length)
			if ratio <= w.low || ratio > w.high {
				t.Errorf("window (%.1f, %.1f]: sequence %q has ratio %.2f",
					w.low, w.high, rec.Sequence, ratio)
			}
			if !strings.Contains(rec.Sequence, "P") {
				t.Errorf("sequence %q has no P residue", rec.Sequence)
			}
		}
	}

	// Re-running must not rewrite existing datasets.
	path := filepath.Join(dir, "vanEck_hratio", "HP20_r0.2.csv")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := GenerateHRatio(dir, length, size, rand.New(rand.NewSource(7))); err != nil {
		t.Fatal(err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("existing dataset was regenerated")
	}
}

func TestGenerateHRatioRejectsImpossibleSize(t *testing.T) {
	err := GenerateHRatio(t.TempDir(), 3, 100, rand.New(rand.NewSource(1)))
	if !errors.Is(err, lattice.ErrInvalidInput) {
		t.Errorf("impossible size: err = %v, want ErrInvalidInput", err)
	}
}

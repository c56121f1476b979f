package search

import (
	"testing"
)

// The parallel search must reproduce the serial branch-and-bound score on
// every input; only the tied move list may differ.
func TestParallelMatchesSerial(t *testing.T) {
	t.Setenv(CacheDirEnv, "")
	cases := []struct {
		seq string
		dim int
	}{
		{"HPPHPPHH", 2},
		{"PHPHPHPPH", 2},
		{"HPPHPHPHPH", 3},
		{"HPHPPHHPHH", 2},
	}
	for _, tc := range cases {
		for _, mode := range []BoundMode{Naive, ReachPrune} {
			ref := mustNew(t, tc.seq, tc.dim)
			if err := DepthFirstBnB(ref, mode); err != nil {
				t.Fatalf("%q dim %d %s serial: %v", tc.seq, tc.dim, mode, err)
			}
			p := mustNew(t, tc.seq, tc.dim)
			if err := DepthFirstBnBParallel(p, mode, 4); err != nil {
				t.Fatalf("%q dim %d %s parallel: %v", tc.seq, tc.dim, mode, err)
			}
			if p.Score() != ref.Score() {
				t.Errorf("%q dim %d %s: parallel score %d, serial %d",
					tc.seq, tc.dim, mode, p.Score(), ref.Score())
			}
		}
	}
}

// Repeated runs must publish the same score regardless of worker timing.
func TestParallelDeterministicScore(t *testing.T) {
	t.Setenv(CacheDirEnv, "")
	var first int
	for i := 0; i < 5; i++ {
		p := mustNew(t, "PHPHPHPPH", 2)
		if err := DepthFirstBnBParallel(p, ReachPrune, 8); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if i == 0 {
			first = p.Score()
			continue
		}
		if p.Score() != first {
			t.Errorf("run %d: score %d, first run found %d", i, p.Score(), first)
		}
	}
	if first != -3 {
		t.Errorf("parallel search found %d, want -3", first)
	}
}

// Chains too short to split fall back to the serial search.
func TestParallelShortChain(t *testing.T) {
	t.Setenv(CacheDirEnv, "")
	p := mustNew(t, "HPPH", 2)
	if err := DepthFirstBnBParallel(p, Naive, 4); err != nil {
		t.Fatalf("DepthFirstBnBParallel: %v", err)
	}
	if p.Score() != -1 {
		t.Errorf("Score() = %d, want -1", p.Score())
	}
}

func TestSplitPrefixes(t *testing.T) {
	p := mustNew(t, "HPPHPPHH", 2)
	prefixes, err := splitPrefixes(p, 3)
	if err != nil {
		t.Fatalf("splitPrefixes: %v", err)
	}
	if len(prefixes) == 0 {
		t.Fatal("no prefixes enumerated")
	}
	seen := map[string]bool{}
	for _, pre := range prefixes {
		if len(pre) != 3 {
			t.Errorf("prefix %v has length %d, want 3", pre, len(pre))
		}
		if pre[0] != 1 {
			t.Errorf("prefix %v does not start with the fixed move 1", pre)
		}
		if pre[1] < 1 {
			t.Errorf("prefix %v breaks the positive-axis restriction", pre)
		}
		key := ""
		for _, m := range pre {
			key += m.String() + ","
		}
		if seen[key] {
			t.Errorf("duplicate prefix %v", pre)
		}
		seen[key] = true
	}
	// Prefix enumeration is lookahead work: the caller's counters stay
	// untouched.
	if p.AminosPlaced() != 1 {
		t.Errorf("AminosPlaced() = %d after enumeration, want 1", p.AminosPlaced())
	}
}

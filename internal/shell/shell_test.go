package shell

import (
	"strings"
	"testing"

	"github.com/okkevaneck/prospr/internal/search"
)

func runShell(t *testing.T, script string) string {
	t.Helper()
	var out strings.Builder
	s := New(strings.NewReader(script), &out, nil)
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestShellFold(t *testing.T) {
	t.Setenv(search.CacheDirEnv, "")
	out := runShell(t, "load PHPHPHPPH\nfold depth_first_bnb\nquit\n")
	if !strings.Contains(out, "loaded PHPHPHPPH") {
		t.Errorf("missing load confirmation:\n%s", out)
	}
	if !strings.Contains(out, "score -3") {
		t.Errorf("missing fold result:\n%s", out)
	}
}

func TestShellBeamWidth(t *testing.T) {
	out := runShell(t, "load PHPHPHPPH\nfold beam_search 40\nquit\n")
	if !strings.Contains(out, "score -2") {
		t.Errorf("beam width 40 should score -2:\n%s", out)
	}
}

func TestShellBonds(t *testing.T) {
	out := runShell(t, "load HPPH\nfold depth_first\nbonds\nquit\n")
	if !strings.Contains(out, "1 bonds") {
		t.Errorf("expected one bond for HPPH:\n%s", out)
	}
}

func TestShellRejectsUnknown(t *testing.T) {
	out := runShell(t, "frobnicate\nquit\n")
	if !strings.Contains(out, "unknown command") {
		t.Errorf("unknown command not reported:\n%s", out)
	}
}

func TestShellNeedsSequence(t *testing.T) {
	out := runShell(t, "fold depth_first\nquit\n")
	if !strings.Contains(out, "no sequence loaded") {
		t.Errorf("fold without a sequence not rejected:\n%s", out)
	}
}

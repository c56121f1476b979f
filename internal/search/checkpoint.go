package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// ErrCheckpointCorrupt marks a checkpoint file that cannot be parsed or
// that was written for different inputs. Callers may delete the file and
// retry.
var ErrCheckpointCorrupt = errors.New("search: checkpoint corrupt")

// checkpointState is the durable state of a branch-and-bound run. The
// encoding is deterministic: struct fields marshal in order and the bond
// table is canonicalised, so two runs reaching the same final state
// produce byte-identical files.
type checkpointState struct {
	Algorithm   string         `json:"algorithm"`
	Sequence    string         `json:"sequence"`
	Dim         int            `json:"dim"`
	BondValues  map[string]int `json:"bond_values"`
	BestScore   int            `json:"best_score"`
	BestHash    []lattice.Move `json:"best_hash"`
	NextSubtree int            `json:"next_subtree"`
	Complete    bool           `json:"complete"`
}

// canonicalBonds normalises a bond table for comparison and encoding:
// each pair key gets its two symbols sorted.
func canonicalBonds(t lattice.BondTable) map[string]int {
	out := make(map[string]int, len(t))
	for pair, v := range t {
		key := pair
		if len(pair) == 2 && pair[0] > pair[1] {
			key = string([]byte{pair[1], pair[0]})
		}
		out[key] = v
	}
	return out
}

func bondsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// checkpointFile manages the checkpoint of one (algorithm, protein) pair.
type checkpointFile struct {
	path      string
	algorithm string
	sequence  string
	dim       int
	bonds     map[string]int
}

// newCheckpointFile derives the checkpoint path
// <dir>/<algorithm>/<sequence>.checkpoint for the given run.
func newCheckpointFile(dir, algorithm string, p *lattice.Protein) *checkpointFile {
	return &checkpointFile{
		path:      filepath.Join(dir, algorithm, p.Sequence()+".checkpoint"),
		algorithm: algorithm,
		sequence:  p.Sequence(),
		dim:       p.Dim(),
		bonds:     canonicalBonds(p.Bonds()),
	}
}

// load reads and validates an existing checkpoint. A missing file is not
// an error; a file for different inputs or with malformed content
// surfaces ErrCheckpointCorrupt.
func (c *checkpointFile) load() (*checkpointState, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state checkpointState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCheckpointCorrupt, c.path, err)
	}
	if state.Algorithm != c.algorithm || state.Sequence != c.sequence ||
		state.Dim != c.dim || !bondsEqual(state.BondValues, c.bonds) {
		return nil, fmt.Errorf("%w: %s was written for different inputs",
			ErrCheckpointCorrupt, c.path)
	}
	return &state, nil
}

// write atomically replaces the checkpoint with the engine's current best
// state. The cache directory is created on demand and never deleted.
func (c *checkpointFile) write(p *lattice.Protein, nextSubtree int, complete bool) error {
	score, _ := p.BestScore()
	state := checkpointState{
		Algorithm:   c.algorithm,
		Sequence:    c.sequence,
		Dim:         c.dim,
		BondValues:  c.bonds,
		BestScore:   score,
		BestHash:    p.BestHash(),
		NextSubtree: nextSubtree,
		Complete:    complete,
	}
	data, err := json.MarshalIndent(&state, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}

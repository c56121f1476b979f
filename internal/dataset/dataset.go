// Package dataset loads the bundled protein sequence collections and
// generates new ones. Datasets are CSV files with an id,sequence header.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// Record is one dataset row.
type Record struct {
	ID       string
	Sequence string
}

// Load parses an id,sequence CSV stream.
func Load(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing dataset header: %v", lattice.ErrInvalidInput, err)
	}
	if header[0] != "id" || header[1] != "sequence" {
		return nil, fmt.Errorf("%w: dataset header %v, want id,sequence",
			lattice.ErrInvalidInput, header)
	}
	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Record{ID: row[0], Sequence: row[1]})
	}
}

// LoadFile loads an id,sequence CSV file.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// VanEck250 loads the vanEck250 collection of the given protein length
// from the data directory.
func VanEck250(dataDir string, length int) ([]Record, error) {
	return LoadFile(filepath.Join(dataDir, "vanEck250", fmt.Sprintf("HP%d.csv", length)))
}

// VanEck1000 loads the vanEck1000 collection of the given protein length.
func VanEck1000(dataDir string, length int) ([]Record, error) {
	return LoadFile(filepath.Join(dataDir, "vanEck1000", fmt.Sprintf("HP%d.csv", length)))
}

// VanEckHRatio loads one H-ratio slice of the vanEck_hratio collection.
func VanEckHRatio(dataDir string, length int, hRatio float64) ([]Record, error) {
	return LoadFile(filepath.Join(dataDir, "vanEck_hratio",
		fmt.Sprintf("HP%d_r%.1f.csv", length, hRatio)))
}

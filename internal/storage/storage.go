package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// Key prefixes
const (
	keyFoldPrefix = "fold/"
	keyStats      = "stats"
)

// FoldRecord is one archived conformation: the inputs that identify the
// problem and the best solution a search produced for it.
type FoldRecord struct {
	Sequence  string         `json:"sequence"`
	Dim       int            `json:"dim"`
	Model     string         `json:"model"`
	Algorithm string         `json:"algorithm"`
	Score     int            `json:"score"`
	Hash      []lattice.Move `json:"hash"`
	Elapsed   time.Duration  `json:"elapsed"`
	SolvedAt  time.Time      `json:"solved_at"`
}

// SearchStats aggregates the archive's search history.
type SearchStats struct {
	Searches         int            `json:"searches"`
	SolutionsChecked int            `json:"solutions_checked"`
	AminosPlaced     int            `json:"aminos_placed"`
	ByAlgorithm      map[string]int `json:"by_algorithm"`
	TotalTime        time.Duration  `json:"total_time"`
}

// NewSearchStats returns empty statistics.
func NewSearchStats() *SearchStats {
	return &SearchStats{ByAlgorithm: make(map[string]int)}
}

// Archive wraps BadgerDB for persistent fold storage.
type Archive struct {
	db *badger.DB
}

// Open opens the archive in the default database directory.
func Open() (*Archive, error) {
	dbDir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dbDir)
}

// OpenAt opens the archive in the given directory.
func OpenAt(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Badger's own logging is noise here

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// foldKey identifies a problem instance in the store.
func foldKey(sequence string, dim int, model string) []byte {
	return []byte(fmt.Sprintf("%s%s/%d/%s", keyFoldPrefix, sequence, dim, model))
}

// SaveFold stores a solved conformation, replacing any previous record
// for the same problem only when the new score is at least as good.
func (a *Archive) SaveFold(rec *FoldRecord) error {
	existing, err := a.LoadFold(rec.Sequence, rec.Dim, rec.Model)
	if err != nil {
		return err
	}
	if existing != nil && existing.Score < rec.Score {
		return nil // keep the better fold
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(foldKey(rec.Sequence, rec.Dim, rec.Model), data)
	})
}

// LoadFold fetches the archived conformation for a problem, or nil when
// none is stored.
func (a *Archive) LoadFold(sequence string, dim int, model string) (*FoldRecord, error) {
	var rec *FoldRecord
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(foldKey(sequence, dim, model))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec = &FoldRecord{}
			return json.Unmarshal(val, rec)
		})
	})
	return rec, err
}

// Folds lists every archived conformation.
func (a *Archive) Folds() ([]*FoldRecord, error) {
	var out []*FoldRecord
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyFoldPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				rec := &FoldRecord{}
				if err := json.Unmarshal(val, rec); err != nil {
					return err
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// LoadStats fetches the aggregate statistics, empty when none exist yet.
func (a *Archive) LoadStats() (*SearchStats, error) {
	stats := NewSearchStats()
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})
	return stats, err
}

// RecordSearch folds one finished search into the archive: the solved
// conformation and the aggregate statistics.
func (a *Archive) RecordSearch(p *lattice.Protein, algorithm string, elapsed time.Duration) error {
	stats, err := a.LoadStats()
	if err != nil {
		return err
	}
	stats.Searches++
	stats.SolutionsChecked += p.SolutionsChecked()
	stats.AminosPlaced += p.AminosPlaced()
	stats.ByAlgorithm[algorithm]++
	stats.TotalTime += elapsed

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	}); err != nil {
		return err
	}

	return a.SaveFold(&FoldRecord{
		Sequence:  p.Sequence(),
		Dim:       p.Dim(),
		Model:     p.Model().Name,
		Algorithm: algorithm,
		Score:     p.Score(),
		Hash:      p.HashFold(),
		Elapsed:   elapsed,
		SolvedAt:  time.Now().UTC(),
	})
}

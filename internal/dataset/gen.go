package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// RandomSequence draws an HP sequence of the given length. hRatio weighs
// the H draws; it is clamped to [0.1, 0.9] so both symbols stay possible.
func RandomSequence(length int, hRatio float64, rng *rand.Rand) string {
	if hRatio < 0.1 {
		hRatio = 0.1
	}
	if hRatio > 0.9 {
		hRatio = 0.9
	}
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		if rng.Float64() < hRatio {
			sb.WriteByte('H')
		} else {
			sb.WriteByte('P')
		}
	}
	return sb.String()
}

// hRatioWindow is one (low, high] slice of the H-ratio dataset.
type hRatioWindow struct {
	low, high float64
}

// hRatioWindows is the vanEck_hratio layout: a wide bottom slice,
// tenth-wide slices through the middle, and a wide top slice.
func hRatioWindows() []hRatioWindow {
	windows := []hRatioWindow{{0.0, 0.2}}
	for high := 0.3; high < 0.9; high += 0.1 {
		windows = append(windows, hRatioWindow{round1(high - 0.1), round1(high)})
	}
	windows = append(windows, hRatioWindow{0.8, 1.0})
	return windows
}

func round1(f float64) float64 {
	v, _ := strconv.ParseFloat(fmt.Sprintf("%.1f", f), 64)
	return v
}

// GenerateHRatio writes the vanEck_hratio dataset files for the given
// protein length into dir, size unique sequences per H-ratio window.
// Existing files are left alone so a dataset is never regenerated.
func GenerateHRatio(dir string, length, size int, rng *rand.Rand) error {
	if length < 1 || size < 1 {
		return fmt.Errorf("%w: length %d, size %d", lattice.ErrInvalidInput, length, size)
	}
	// A window cannot hold more unique sequences than the alphabet allows.
	if length < 63 && (int64(1)<<uint(length)) < int64(size) {
		return fmt.Errorf("%w: cannot produce %d unique proteins of length %d",
			lattice.ErrInvalidInput, size, length)
	}
	dsDir := filepath.Join(dir, "vanEck_hratio")
	if err := os.MkdirAll(dsDir, 0o755); err != nil {
		return err
	}

	for _, w := range hRatioWindows() {
		path := filepath.Join(dsDir, fmt.Sprintf("HP%d_r%.1f.csv", length, w.high))
		if _, err := os.Stat(path); err == nil {
			continue
		}
		set := map[string]bool{}
		hWeight := w.high
		if hWeight > 0.9 {
			hWeight = 0.9
		}
		if hWeight < 0.1 {
			hWeight = 0.1
		}
		attempts := 0
		maxAttempts := 20000 * size
		for len(set) < size {
			if attempts++; attempts > maxAttempts {
				return fmt.Errorf("%w: window (%.1f, %.1f] cannot yield %d unique proteins of length %d",
					lattice.ErrInvalidInput, w.low, w.high, size, length)
			}
			seq := RandomSequence(length, hWeight, rng)
			hCount := strings.Count(seq, "H")
			if hCount == length {
				continue // at least one P
			}
			ratio := float64(hCount) / float64(length)
			if ratio > w.low && ratio <= w.high {
				set[seq] = true
			}
		}
		if err := writeDataset(path, set); err != nil {
			return err
		}
	}
	return nil
}

func writeDataset(path string, set map[string]bool) error {
	sequences := make([]string, 0, len(set))
	for s := range set {
		sequences = append(sequences, s)
	}
	sort.Strings(sequences)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"id", "sequence"}); err != nil {
		f.Close()
		return err
	}
	for i, s := range sequences {
		if err := cw.Write([]string{strconv.Itoa(i), s}); err != nil {
			f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

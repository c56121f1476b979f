// prospr folds HP proteins on the integer lattice from the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/okkevaneck/prospr/internal/dataset"
	"github.com/okkevaneck/prospr/internal/export"
	"github.com/okkevaneck/prospr/internal/lattice"
	"github.com/okkevaneck/prospr/internal/search"
	"github.com/okkevaneck/prospr/internal/shell"
	"github.com/okkevaneck/prospr/internal/storage"
)

var (
	sequence   = flag.String("sequence", "", "protein sequence over the model alphabet")
	dim        = flag.Int("dim", 2, "lattice dimension")
	model      = flag.String("model", "HP", "bond-table preset")
	bondValues = flag.String("bond_values", "", "explicit bond table overriding the model, e.g. HH=-1,HP=0")
	algorithm  = flag.String("algorithm", "depth_first_bnb", "depth_first | depth_first_bnb | depth_first_bnb_parallel | beam_search")
	bnbMode    = flag.String("bnb_mode", "naive", "branch-and-bound bound: naive | reach_prune")
	beamWidth  = flag.Int("beam_width", 0, "beam width; 0 or below means unbounded")
	workers    = flag.Int("workers", 0, "parallel worker count; 0 selects the CPU count")
	cacheDir   = flag.String("cache_dir", "", "checkpoint cache directory (also read from "+search.CacheDirEnv+")")
	pdbPath    = flag.String("pdb", "", "write the folded conformation to this .pdb file")
	useArchive = flag.Bool("archive", false, "record the result in the fold archive")
	runShell   = flag.Bool("shell", false, "start the interactive shell")
	csvPath    = flag.String("dataset", "", "fold every sequence of this id,sequence CSV")
	genHRatio  = flag.Bool("gen_hratio", false, "generate the vanEck_hratio datasets and exit")
	dataDir    = flag.String("data_dir", "data", "dataset directory for -gen_hratio")
	genLength  = flag.Int("gen_length", 25, "protein length for -gen_hratio")
	genSize    = flag.Int("gen_size", 300, "sequences per H-ratio window for -gen_hratio")
	genSeed    = flag.Int64("gen_seed", 0, "random seed for -gen_hratio; 0 uses the current time")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	if *runShell {
		var archive *storage.Archive
		if *useArchive {
			var err error
			if archive, err = storage.Open(); err != nil {
				log.Printf("Warning: fold archive unavailable: %v", err)
			} else {
				defer archive.Close()
			}
		}
		if err := shell.New(os.Stdin, os.Stdout, archive).Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *genHRatio {
		seed := *genSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		if err := dataset.GenerateHRatio(*dataDir, *genLength, *genSize, rng); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("generated vanEck_hratio datasets under %s\n", *dataDir)
		return
	}

	if *csvPath != "" {
		if err := foldDataset(*csvPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *sequence == "" {
		fmt.Fprintln(os.Stderr, "prospr: -sequence is required (or run with -shell)")
		flag.Usage()
		os.Exit(2)
	}

	p, err := newProtein()
	if err != nil {
		log.Fatal(err)
	}

	if *cacheDir != "" {
		os.Setenv(search.CacheDirEnv, *cacheDir)
	}

	start := time.Now()
	if err := fold(p); err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	fmt.Printf("sequence:  %s\n", p.Sequence())
	fmt.Printf("dimension: %d\n", p.Dim())
	fmt.Printf("algorithm: %s\n", *algorithm)
	fmt.Printf("score:     %d\n", p.Score())
	fmt.Printf("fold:      %v\n", p.HashFold())
	fmt.Printf("checked %d conformations, placed %d aminos in %v\n",
		p.SolutionsChecked(), p.AminosPlaced(), elapsed.Round(time.Microsecond))

	if *pdbPath != "" {
		if err := export.PDB(p, *pdbPath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *pdbPath)
	}

	if *useArchive {
		archive, err := storage.Open()
		if err != nil {
			log.Printf("Warning: fold archive unavailable: %v", err)
			return
		}
		defer archive.Close()
		if err := archive.RecordSearch(p, *algorithm, elapsed); err != nil {
			log.Printf("Warning: could not archive result: %v", err)
		}
	}
}

// newProtein builds the engine from the configured sequence, dimension,
// and energy model.
func newProtein() (*lattice.Protein, error) {
	if *bondValues != "" {
		bonds, err := parseBondValues(*bondValues)
		if err != nil {
			return nil, err
		}
		return lattice.NewWithBonds(*sequence, *dim, bonds)
	}
	m, ok := lattice.ModelByName(*model)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", *model)
	}
	return lattice.NewWithModel(*sequence, *dim, m)
}

// parseBondValues reads a comma-separated pair=value list, e.g.
// "HH=-1,HP=0".
func parseBondValues(s string) (lattice.BondTable, error) {
	table := lattice.BondTable{}
	for _, entry := range strings.Split(s, ",") {
		pair, value, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found || len(pair) != 2 {
			return nil, fmt.Errorf("bad bond entry %q, want XY=value", entry)
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("bad bond value in %q: %v", entry, err)
		}
		table[pair] = v
	}
	return table, nil
}

// fold dispatches to the configured search algorithm.
func fold(p *lattice.Protein) error {
	switch *algorithm {
	case "depth_first":
		return search.DepthFirst(p)
	case "depth_first_bnb":
		mode, err := search.ParseBoundMode(*bnbMode)
		if err != nil {
			return err
		}
		return search.DepthFirstBnB(p, mode)
	case "depth_first_bnb_parallel":
		mode, err := search.ParseBoundMode(*bnbMode)
		if err != nil {
			return err
		}
		return search.DepthFirstBnBParallel(p, mode, *workers)
	case "beam_search":
		return search.BeamSearch(p, *beamWidth)
	}
	return fmt.Errorf("unknown algorithm %q", *algorithm)
}

// foldDataset folds every sequence of an id,sequence CSV and prints one
// result line per record.
func foldDataset(path string) error {
	records, err := dataset.LoadFile(path)
	if err != nil {
		return err
	}
	for _, rec := range records {
		p, err := lattice.New(rec.Sequence, *dim)
		if err != nil {
			return fmt.Errorf("record %s: %w", rec.ID, err)
		}
		start := time.Now()
		if err := fold(p); err != nil {
			return fmt.Errorf("record %s: %w", rec.ID, err)
		}
		fmt.Printf("%s,%s,%d,%v\n", rec.ID, rec.Sequence, p.Score(),
			time.Since(start).Round(time.Microsecond))
	}
	return nil
}

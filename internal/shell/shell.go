// Package shell implements the interactive text protocol of the toolbox:
// a line-based interpreter over stdin for loading sequences, running the
// search algorithms, and inspecting or exporting the results.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okkevaneck/prospr/internal/export"
	"github.com/okkevaneck/prospr/internal/lattice"
	"github.com/okkevaneck/prospr/internal/search"
	"github.com/okkevaneck/prospr/internal/storage"
)

const prompt = "prospr> "

// Shell is the interpreter state: the current engine and its inputs.
type Shell struct {
	in  io.Reader
	out io.Writer

	protein *lattice.Protein
	model   lattice.Model
	dim     int
	workers int

	archive *storage.Archive
}

// New creates a shell over the given streams. The archive is optional;
// without one the archive commands report that storage is disabled.
func New(in io.Reader, out io.Writer, archive *storage.Archive) *Shell {
	return &Shell{in: in, out: out, model: lattice.HP, dim: 2, archive: archive}
}

// Run reads and executes commands until quit or EOF.
func (s *Shell) Run() error {
	scanner := bufio.NewScanner(s.in)
	s.printf("%s interactive shell; type help for commands\n", "prospr")
	s.printf(prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			s.printf(prompt)
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "load":
			s.handleLoad(args)
		case "dim":
			s.handleDim(args)
		case "fold":
			s.handleFold(args)
		case "show":
			s.handleShow()
		case "bonds":
			s.handleBonds()
		case "export":
			s.handleExport(args)
		case "archive":
			s.handleArchive()
		case "stats":
			s.handleStats()
		case "help":
			s.printHelp()
		case "quit", "exit":
			return nil
		default:
			s.printf("unknown command %q; type help\n", cmd)
		}
		s.printf(prompt)
	}
	return scanner.Err()
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) printHelp() {
	s.printf(`commands:
  load <sequence>        load an HP sequence into a fresh engine
  dim <d>                set the lattice dimension (default 2)
  fold <algorithm>       depth_first | depth_first_bnb | depth_first_bnb_reach |
                         depth_first_bnb_parallel | beam_search [width]
  show                   print the current conformation
  bonds                  print the scoring pairs
  export <file.pdb>      write the conformation as PDB
  archive                list archived folds
  stats                  print archive statistics
  quit                   leave the shell
`)
}

func (s *Shell) handleLoad(args []string) {
	if len(args) != 1 {
		s.printf("usage: load <sequence>\n")
		return
	}
	p, err := lattice.NewWithModel(args[0], s.dim, s.model)
	if err != nil {
		s.printf("load: %v\n", err)
		return
	}
	s.protein = p
	s.printf("loaded %s (dim %d, model %s)\n", p.Sequence(), p.Dim(), p.Model().Name)
}

func (s *Shell) handleDim(args []string) {
	if len(args) != 1 {
		s.printf("usage: dim <d>\n")
		return
	}
	d, err := strconv.Atoi(args[0])
	if err != nil || d < 2 {
		s.printf("dim: need an integer of at least 2\n")
		return
	}
	s.dim = d
	if s.protein != nil {
		p, err := lattice.NewWithModel(s.protein.Sequence(), d, s.model)
		if err != nil {
			s.printf("dim: %v\n", err)
			return
		}
		s.protein = p
	}
	s.printf("dimension set to %d\n", d)
}

func (s *Shell) handleFold(args []string) {
	if s.protein == nil {
		s.printf("no sequence loaded; use load first\n")
		return
	}
	if len(args) == 0 {
		s.printf("usage: fold <algorithm>\n")
		return
	}
	algo := args[0]
	start := time.Now()
	var err error
	switch algo {
	case "depth_first":
		err = search.DepthFirst(s.protein)
	case "depth_first_bnb":
		err = search.DepthFirstBnB(s.protein, search.Naive)
	case "depth_first_bnb_reach":
		err = search.DepthFirstBnB(s.protein, search.ReachPrune)
	case "depth_first_bnb_parallel":
		err = search.DepthFirstBnBParallel(s.protein, search.ReachPrune, s.workers)
	case "beam_search":
		width := 0
		if len(args) > 1 {
			if width, err = strconv.Atoi(args[1]); err != nil {
				s.printf("beam_search: bad width %q\n", args[1])
				return
			}
		}
		err = search.BeamSearch(s.protein, width)
	default:
		s.printf("unknown algorithm %q\n", algo)
		return
	}
	if err != nil {
		s.printf("fold: %v\n", err)
		return
	}
	elapsed := time.Since(start)
	s.printf("score %d in %v (%d conformations checked, %d aminos placed)\n",
		s.protein.Score(), elapsed.Round(time.Microsecond),
		s.protein.SolutionsChecked(), s.protein.AminosPlaced())

	if s.archive != nil {
		if err := s.archive.RecordSearch(s.protein, algo, elapsed); err != nil {
			s.printf("archive: %v\n", err)
		}
	}
}

func (s *Shell) handleShow() {
	if s.protein == nil {
		s.printf("no sequence loaded\n")
		return
	}
	s.printf("sequence %s, dim %d, score %d\n",
		s.protein.Sequence(), s.protein.Dim(), s.protein.Score())
	s.printf("fold %v\n", s.protein.HashFold())
	for i, a := range lattice.OrderedPositions(s.protein) {
		s.printf("  %3d %c %v\n", i, a.Symbol, a.Pos)
	}
}

func (s *Shell) handleBonds() {
	if s.protein == nil {
		s.printf("no sequence loaded\n")
		return
	}
	bonds := s.protein.GetBonds()
	for i := 0; i < len(bonds); i += 2 {
		s.printf("  %d - %d\n", bonds[i][0], bonds[i][1])
	}
	s.printf("%d bonds\n", len(bonds)/2)
}

func (s *Shell) handleExport(args []string) {
	if s.protein == nil {
		s.printf("no sequence loaded\n")
		return
	}
	if len(args) != 1 {
		s.printf("usage: export <file.pdb>\n")
		return
	}
	if err := export.PDB(s.protein, args[0]); err != nil {
		s.printf("export: %v\n", err)
		return
	}
	s.printf("wrote %s\n", args[0])
}

func (s *Shell) handleArchive() {
	if s.archive == nil {
		s.printf("archive storage is disabled\n")
		return
	}
	folds, err := s.archive.Folds()
	if err != nil {
		s.printf("archive: %v\n", err)
		return
	}
	for _, f := range folds {
		s.printf("  %s dim %d: score %d (%s)\n", f.Sequence, f.Dim, f.Score, f.Algorithm)
	}
	s.printf("%d archived folds\n", len(folds))
}

func (s *Shell) handleStats() {
	if s.archive == nil {
		s.printf("archive storage is disabled\n")
		return
	}
	stats, err := s.archive.LoadStats()
	if err != nil {
		s.printf("stats: %v\n", err)
		return
	}
	s.printf("searches: %d, conformations checked: %d, aminos placed: %d, total time: %v\n",
		stats.Searches, stats.SolutionsChecked, stats.AminosPlaced, stats.TotalTime)
	for algo, count := range stats.ByAlgorithm {
		s.printf("  %s: %d\n", algo, count)
	}
}

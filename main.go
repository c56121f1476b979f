// prospr-view folds a protein and opens the interactive conformation
// viewer built with Ebitengine.
package main

import (
	"flag"
	"log"

	"github.com/okkevaneck/prospr/internal/lattice"
	"github.com/okkevaneck/prospr/internal/search"
	"github.com/okkevaneck/prospr/internal/ui"
)

var (
	sequence  = flag.String("sequence", "HPPHPHPHPH", "protein sequence to fold and display")
	dim       = flag.Int("dim", 2, "lattice dimension (2 or 3)")
	algorithm = flag.String("algorithm", "depth_first_bnb", "depth_first | depth_first_bnb | beam_search")
	bnbMode   = flag.String("bnb_mode", "reach_prune", "branch-and-bound bound: naive | reach_prune")
	beamWidth = flag.Int("beam_width", 0, "beam width; 0 or below means unbounded")
	markerDir = flag.String("markers", "", "directory with H.svg/P.svg residue markers")
)

func main() {
	flag.Parse()

	p, err := lattice.New(*sequence, *dim)
	if err != nil {
		log.Fatal(err)
	}

	switch *algorithm {
	case "depth_first":
		err = search.DepthFirst(p)
	case "depth_first_bnb":
		var mode search.BoundMode
		if mode, err = search.ParseBoundMode(*bnbMode); err == nil {
			err = search.DepthFirstBnB(p, mode)
		}
	case "beam_search":
		err = search.BeamSearch(p, *beamWidth)
	default:
		log.Fatalf("unknown algorithm %q", *algorithm)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("folded %s to score %d", p.Sequence(), p.Score())

	if err := ui.Show(p, *markerDir); err != nil {
		log.Fatal(err)
	}
}

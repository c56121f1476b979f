// Package export writes folded conformations to external file formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// caSpacing is the C-alpha to C-alpha distance used to scale lattice
// coordinates to Angstrom.
const caSpacing = 3.8

// toolName appears in the REMARK line of generated files.
const toolName = "prospr"

// PDB writes the current conformation of p as a PDB file. Only 2D and 3D
// conformations can be exported, and the path must carry the .pdb suffix;
// anything else fails with lattice.ErrInvalidInput.
func PDB(p *lattice.Protein, path string) error {
	if !strings.HasSuffix(path, ".pdb") {
		return fmt.Errorf("%w: export path %q lacks the .pdb suffix",
			lattice.ErrInvalidInput, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePDB(p, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePDB writes the PDB records for the current conformation of p.
// Each placed residue becomes a C-alpha atom at 3.8 Angstrom lattice
// spacing; coordinates are shifted by a non-negative offset so none is
// negative. H residues export as ALA, every other symbol as SER.
func WritePDB(p *lattice.Protein, w io.Writer) error {
	dim := p.Dim()
	if dim != 2 && dim != 3 {
		return fmt.Errorf("%w: cannot export a %dD structure as PDB",
			lattice.ErrInvalidInput, dim)
	}

	placed := lattice.OrderedPositions(p)
	offset := make([]int32, dim)
	for _, a := range placed {
		for i, c := range a.Pos {
			if c < offset[i] {
				offset[i] = c
			}
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "HEADER    HP-protein folding structure")
	fmt.Fprintf(bw, "TITLE     Sequence: %s\n", p.Sequence())
	fmt.Fprintf(bw, "REMARK    Generated using %s\n", toolName)

	for i, a := range placed {
		var xyz [3]float64
		for j, c := range a.Pos {
			xyz[j] = float64(c-offset[j]) * caSpacing
		}
		name := "SER"
		if a.Symbol == 'H' {
			name = "ALA"
		}
		fmt.Fprintf(bw, "ATOM  %5d  CA  %3s A%4d    %8.3f%8.3f%8.3f  1.00  0.00           C\n",
			i+1, name, i+1, xyz[0], xyz[1], xyz[2])
	}

	n := len(placed)
	if n > 1 {
		fmt.Fprintf(bw, "CONECT %4d %4d\n", 1, 2)
		for i := 2; i < n; i++ {
			fmt.Fprintf(bw, "CONECT %4d %4d %4d\n", i, i-1, i+1)
		}
	}
	fmt.Fprintln(bw, "END")
	return bw.Flush()
}

package lattice

import "errors"

// Error kinds surfaced by the conformation engine. Callers match them
// with errors.Is; the wrapped message carries the specifics.
var (
	// ErrInvalidInput marks a malformed sequence, dimension, or bond table.
	ErrInvalidInput = errors.New("lattice: invalid input")

	// ErrIllegalMove marks a placement that would leave the lattice, fold
	// the chain onto itself, or rewind past the first residue.
	ErrIllegalMove = errors.New("lattice: illegal move")
)

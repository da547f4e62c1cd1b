package board

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFEN is wrapped by every FEN parsing failure.
	ErrInvalidFEN = errors.New("invalid FEN")

	// ErrInvalidSquare is returned for square text that is not a1..h8.
	ErrInvalidSquare = errors.New("invalid square")

	// ErrInvalidCompact is wrapped by compact position decoding failures.
	ErrInvalidCompact = errors.New("invalid compact position")

	// ErrInvalidMove matches any *InvalidMoveError via errors.Is.
	ErrInvalidMove = errors.New("invalid move")
)

// InvalidMoveError reports a move request that matched no legal move.
// It carries the attempted move text and the FEN of the position it was
// attempted against.
type InvalidMoveError struct {
	Move string
	FEN  string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move %q in position %q", e.Move, e.FEN)
}

// Is lets errors.Is(err, ErrInvalidMove) match.
func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

func fenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

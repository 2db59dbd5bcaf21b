// Package matcherrors holds the sentinel errors raised by the board's flip
// protocol. It exists as its own package, independent of board/boardfile/ws,
// so that every layer can compare against the same error values without
// import cycles.
package matcherrors

import (
	"errors"
	"fmt"
)

// Sentinel errors raised by Board.FlipUp and friends. Callers should use
// errors.Is against these values rather than comparing message strings,
// though the messages themselves are part of the contract (tests and wire
// clients match on these substrings).
var (
	ErrEmptySpace      = errors.New("empty space")
	ErrControlled      = errors.New("controlled")
	ErrSameCard        = errors.New("cannot choose same card")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrOutOfBounds     = errors.New("out of bounds")
	ErrMalformedBoard  = errors.New("malformed board")
	ErrWaitCancelled   = errors.New("flip wait cancelled")
	ErrInvalidPlayerID = errors.New("player id must be non-empty and whitespace-free")
)

// BoundsError reports a (row, col) outside the board's extent. It wraps
// ErrOutOfBounds so callers can either match the sentinel or read the
// offending coordinates.
type BoundsError struct {
	Row, Col   int
	Rows, Cols int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("out of bounds: (%d,%d) not in [0,%d)x[0,%d)", e.Row, e.Col, e.Rows, e.Cols)
}

func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }

// MalformedBoardError reports a parser-time failure, with the line number
// (1-indexed) where the problem was found when known; Line is 0 when the
// failure is not line-specific (e.g. a wrong total token count).
type MalformedBoardError struct {
	Line   int
	Reason string
}

func (e *MalformedBoardError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed board at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed board: %s", e.Reason)
}

func (e *MalformedBoardError) Unwrap() error { return ErrMalformedBoard }

// Package board implements the concurrency engine at the heart of Memory
// Scramble: the card state machine, the multi-player flip protocol, and the
// blocking/wake discipline that lets many players flip cards at once
// without serializing the whole grid.
//
// The whole Board is guarded by one *sync.Mutex. Every cell shares that
// mutex as the locker for its own *sync.Cond, so waiting for a cell
// controlled by another player — the protocol's only suspension point —
// never holds the lock and never risks missing a wake.
package board

import (
	"context"
	"fmt"
	"sync"

	"memory-scramble-server/matcherrors"
)

// Board owns the rows x cols grid, the player registry, and every
// player's in-flight turn state.
type Board struct {
	mu sync.Mutex

	rows, cols int
	grid       [][]*cell

	reg   *registry
	turns map[string]*turnState
}

// New constructs a Board from a row-major slice of picture tokens. len(pictures)
// must equal rows*cols; rows and cols must both be positive. Every cell
// starts face-down and uncontrolled.
func New(rows, cols int, pictures []string) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &matcherrors.MalformedBoardError{Reason: fmt.Sprintf("rows and cols must be positive, got %dx%d", rows, cols)}
	}
	if len(pictures) != rows*cols {
		return nil, &matcherrors.MalformedBoardError{Reason: fmt.Sprintf("expected %d tokens, got %d", rows*cols, len(pictures))}
	}

	b := &Board{
		rows:  rows,
		cols:  cols,
		reg:   newRegistry(),
		turns: make(map[string]*turnState),
	}
	b.grid = make([][]*cell, rows)
	for r := 0; r < rows; r++ {
		b.grid[r] = make([]*cell, cols)
		for c := 0; c < cols; c++ {
			token := pictures[r*cols+c]
			if token == "" {
				return nil, &matcherrors.MalformedBoardError{Reason: "card tokens must not be empty"}
			}
			b.grid[r][c] = newCell(token, &b.mu)
		}
	}
	return b, nil
}

// NumRows returns the board's row count.
func (b *Board) NumRows() int { return b.rows }

// NumCols returns the board's column count.
func (b *Board) NumCols() int { return b.cols }

func (b *Board) checkBounds(r, c int) error {
	if r < 0 || r >= b.rows || c < 0 || c >= b.cols {
		return &matcherrors.BoundsError{Row: r, Col: c, Rows: b.rows, Cols: b.cols}
	}
	return nil
}

// PictureAt returns the picture token at (r,c), or "" if the cell is empty.
func (b *Board) PictureAt(r, c int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkBounds(r, c); err != nil {
		return "", err
	}
	return b.grid[r][c].picture, nil
}

// IsFaceUp reports whether the cell at (r,c) is currently face-up.
func (b *Board) IsFaceUp(r, c int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkBounds(r, c); err != nil {
		return false, err
	}
	return b.grid[r][c].faceUp, nil
}

// ControllerAt returns the player-id controlling (r,c), or "" if uncontrolled.
func (b *Board) ControllerAt(r, c int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkBounds(r, c); err != nil {
		return "", err
	}
	return b.grid[r][c].controller, nil
}

// RegisterPlayer adds id to the player registry with the given display
// name (defaulting to id itself when empty). Re-registering an existing id
// is a no-op; it never touches turn state.
func (b *Board) RegisterPlayer(id, displayName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.register(id, displayName)
}

// IsRegistered reports whether id has been registered.
func (b *Board) IsRegistered(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.has(id)
}

// PicturesDump serializes the board deterministically for tests: a header
// line "<rows>x<cols>" followed by one picture per row-major cell, empties
// rendered as an empty line. It exposes the board's own deck for round-trip
// testing and is never sent to clients.
func (b *Board) PicturesDump() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := fmt.Sprintf("%dx%d\n", b.rows, b.cols)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			out += b.grid[r][c].picture + "\n"
		}
	}
	return out
}

// FlipUp runs a player's flip attempt against cell (r,c), playing the role
// of either their FIRST or SECOND card for the current turn depending on
// what they're already holding. It may suspend the calling goroutine while
// waiting for a contended cell to be released; ctx bounds that suspension
// (pass context.Background() for an unbounded wait). It never leaves a cell
// or the caller's turn state in a partially-committed state: every return
// is either a full commit or a no-op (bounds/unknown-player checks) —
// except that a failed SECOND attempt intentionally leaves the FIRST card
// face-up and uncontrolled until the player's next flip cleans it up.
func (b *Board) FlipUp(ctx context.Context, playerID string, r, c int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkBounds(r, c); err != nil {
		return err
	}
	if !b.reg.has(playerID) {
		return matcherrors.ErrUnknownPlayer
	}

	ts := b.turns[playerID]
	if ts == nil {
		ts = &turnState{phase: phaseIdle}
		b.turns[playerID] = ts
	}

	b.cleanup(ts)

	target := b.grid[r][c]

	switch ts.phase {
	case phaseHoldingFirst:
		return b.flipSecond(playerID, ts, target, r, c)
	default:
		return b.flipFirst(ctx, playerID, ts, target, r, c)
	}
}

// cleanup resolves the leftover state from the player's previous pair —
// removing a matched pair, flipping an unclaimed mismatched pair back
// down, or flipping down a lingering uncontrolled card — and is run as the
// preamble of every FlipUp call.
func (b *Board) cleanup(ts *turnState) {
	if ts.phase != phasePairPending {
		return
	}
	switch ts.outcome {
	case outcomeMatched:
		b.grid[ts.a.row][ts.a.col].remove()
		b.grid[ts.b.row][ts.b.col].remove()
	case outcomeMismatched:
		b.grid[ts.a.row][ts.a.col].flipDownIfUncontrolled()
		b.grid[ts.b.row][ts.b.col].flipDownIfUncontrolled()
	case outcomeSingleLinger:
		b.grid[ts.a.row][ts.a.col].flipDownIfUncontrolled()
	}
	ts.phase = phaseIdle
}

// flipFirst handles a player's FIRST-card flip: fail on an empty cell, flip
// a face-down cell and claim it, claim a face-up uncontrolled cell outright,
// or suspend if another player already controls it.
func (b *Board) flipFirst(ctx context.Context, playerID string, ts *turnState, target *cell, r, c int) error {
	for {
		switch {
		case target.isEmpty():
			return matcherrors.ErrEmptySpace

		case !target.faceUp:
			target.faceUp = true
			target.controller = playerID
			ts.phase = phaseHoldingFirst
			ts.first = coord{r, c}
			return nil

		case target.controller == "":
			target.controller = playerID
			ts.phase = phaseHoldingFirst
			ts.first = coord{r, c}
			return nil

		default:
			// Contended by another player. Suspend until the next
			// relinquishment or cancellation, then re-check from the top.
			if err := b.waitOn(ctx, target); err != nil {
				return err
			}
		}
	}
}

// flipSecond handles a player's SECOND-card flip against their held FIRST
// card: picking the same cell again, an empty or already-controlled cell,
// or a valid target that either matches or mismatches the FIRST card.
func (b *Board) flipSecond(playerID string, ts *turnState, target *cell, r, c int) error {
	first := b.grid[ts.first.row][ts.first.col]

	if r == ts.first.row && c == ts.first.col {
		b.relinquishToSingleLinger(ts, first)
		return matcherrors.ErrSameCard
	}

	switch {
	case target.isEmpty():
		b.relinquishToSingleLinger(ts, first)
		return matcherrors.ErrEmptySpace

	case target.faceUp && target.controller != "":
		b.relinquishToSingleLinger(ts, first)
		return matcherrors.ErrControlled

	case !target.faceUp:
		target.faceUp = true
		target.controller = playerID

	default:
		target.controller = playerID
	}

	if first.picture == target.picture {
		ts.phase = phasePairPending
		ts.outcome = outcomeMatched
		ts.a, ts.b = ts.first, coord{r, c}
		return nil
	}

	first.release()
	target.release()
	ts.phase = phasePairPending
	ts.outcome = outcomeMismatched
	ts.a, ts.b = ts.first, coord{r, c}
	return nil
}

// relinquishToSingleLinger releases control of the FIRST cell (leaving it
// face-up) and records it for flip-down on this player's next FIRST
// attempt, per the singleLinger sub-case.
func (b *Board) relinquishToSingleLinger(ts *turnState, first *cell) {
	first.release()
	ts.phase = phasePairPending
	ts.outcome = outcomeSingleLinger
	ts.a = ts.first
}

// waitOn suspends the caller on target's condition variable until either a
// relinquishment broadcasts or ctx is done. Cond.Wait atomically releases
// b.mu while parked and reacquires it before returning, so the caller never
// holds the lock while suspended, and other goroutines can keep making
// progress on unrelated cells.
func (b *Board) waitOn(ctx context.Context, target *cell) error {
	if ctx == nil {
		target.cond.Wait()
		return nil
	}
	select {
	case <-ctx.Done():
		return matcherrors.ErrWaitCancelled
	default:
	}

	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		close(done)
		target.cond.Broadcast()
	})
	defer stop()

	target.cond.Wait()

	select {
	case <-done:
		return matcherrors.ErrWaitCancelled
	default:
		return nil
	}
}

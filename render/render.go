// Package render formats a board.Snapshot into its textual wire rendering.
// It never touches a *board.Board directly or takes any lock:
// Board.Snapshot already did the one consistent read under the board
// mutex, and everything here is pure formatting over the copy it returned.
package render

import (
	"strconv"
	"strings"

	"memory-scramble-server/board"
)

// Render produces the player-specific snapshot text:
//
//	<rows>x<cols>
//	<one line per cell, row-major>
//
// where each cell line is "none", "down", "my <picture>", or "up <picture>",
// and the whole text ends in a trailing newline.
func Render(snap board.Snapshot) string {
	var b strings.Builder
	b.Grow(16 + len(snap.Cells)*8)

	b.WriteString(strconv.Itoa(snap.Rows))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(snap.Cols))
	b.WriteByte('\n')

	for _, cell := range snap.Cells {
		switch cell.State {
		case board.StateNone:
			b.WriteString("none")
		case board.StateDown:
			b.WriteString("down")
		case board.StateUpMine:
			b.WriteString("my ")
			b.WriteString(cell.Picture)
		case board.StateUpOther:
			b.WriteString("up ")
			b.WriteString(cell.Picture)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

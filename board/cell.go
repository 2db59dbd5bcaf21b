package board

import "sync"

// emptyPicture is the distinguished value meaning "no card here anymore":
// the cell's pair was matched and removed. A cell holding emptyPicture is
// always face-down and uncontrolled.
const emptyPicture = ""

// cell is one square of the grid. It carries no exported methods: every
// mutation happens under the owning Board's mutex, which is also the
// locker for cond.
type cell struct {
	picture    string // emptyPicture once matched-and-removed
	faceUp     bool
	controller string // "" means no controller

	// cond broadcasts whenever controller transitions to "" or the cell
	// becomes empty — the only two events a suspended flip is waiting on.
	// Every cell shares the Board's single mutex as cond.L, so Wait
	// releases the one lock the whole board is built around.
	cond *sync.Cond
}

func newCell(picture string, mu *sync.Mutex) *cell {
	return &cell{
		picture: picture,
		cond:    sync.NewCond(mu),
	}
}

func (c *cell) isEmpty() bool { return c.picture == emptyPicture }

// release clears the controller (if any) and wakes every waiter. It is a
// no-op broadcast-wise if the cell had no controller already, since no
// waiter could be suspended on an already-claimable cell.
func (c *cell) release() {
	if c.controller == "" {
		return
	}
	c.controller = ""
	c.cond.Broadcast()
}

// remove clears the cell to emptyPicture: the card is gone for good.
func (c *cell) remove() {
	c.picture = emptyPicture
	c.faceUp = false
	c.controller = ""
	c.cond.Broadcast()
}

// flipDownIfUncontrolled hides a lingering face-up card again, but only if
// nobody has since taken it over.
func (c *cell) flipDownIfUncontrolled() {
	if c.faceUp && c.controller == "" {
		c.faceUp = false
	}
}

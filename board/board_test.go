package board

import (
	"context"
	"errors"
	"testing"

	"memory-scramble-server/matcherrors"
)

func must(t *testing.T, b *Board, err error) *Board {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func newTestBoard(t *testing.T, rows, cols int, pictures []string) *Board {
	t.Helper()
	b, err := New(rows, cols, pictures)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func register(t *testing.T, b *Board, id string) {
	t.Helper()
	if err := b.RegisterPlayer(id, ""); err != nil {
		t.Fatalf("RegisterPlayer(%q): %v", id, err)
	}
}

func flip(t *testing.T, b *Board, player string, r, c int) error {
	t.Helper()
	return b.FlipUp(context.Background(), player, r, c)
}

func TestNewValidatesDimensionsAndTokens(t *testing.T) {
	if _, err := New(0, 2, []string{"A", "B"}); err == nil {
		t.Fatal("expected error for rows=0")
	}
	if _, err := New(2, 0, []string{"A", "B"}); err == nil {
		t.Fatal("expected error for cols=0")
	}
	if _, err := New(1, 2, []string{"A"}); err == nil {
		t.Fatal("expected error for wrong token count")
	}
	if _, err := New(1, 2, []string{"A", ""}); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestBoundsErrors(t *testing.T) {
	b := newTestBoard(t, 2, 2, []string{"A", "A", "B", "B"})
	register(t, b, "p")

	cases := []struct{ r, c int }{
		{-1, 0}, {0, -1}, {2, 0}, {0, 2},
	}
	for _, tc := range cases {
		if _, err := b.PictureAt(tc.r, tc.c); err == nil || !errors.Is(err, matcherrors.ErrOutOfBounds) {
			t.Errorf("PictureAt(%d,%d): want out of bounds, got %v", tc.r, tc.c, err)
		}
		if err := flip(t, b, "p", tc.r, tc.c); err == nil || !errors.Is(err, matcherrors.ErrOutOfBounds) {
			t.Errorf("FlipUp(%d,%d): want out of bounds, got %v", tc.r, tc.c, err)
		}
	}
}

func TestFlipUnknownPlayer(t *testing.T) {
	b := newTestBoard(t, 1, 2, []string{"A", "B"})
	if err := flip(t, b, "nobody", 0, 0); !errors.Is(err, matcherrors.ErrUnknownPlayer) {
		t.Fatalf("want unknown player, got %v", err)
	}
}

func TestRegisterPlayerIsIdempotent(t *testing.T) {
	b := newTestBoard(t, 1, 1, []string{"A"})
	if err := b.RegisterPlayer("p", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterPlayer("p", "Bob"); err != nil {
		t.Fatal(err)
	}
	// Re-registration must not overwrite the stored display name.
	if got := b.reg.displayName("p"); got != "Alice" {
		t.Fatalf("want Alice, got %q", got)
	}
}

func TestRegisterPlayerValidatesID(t *testing.T) {
	b := newTestBoard(t, 1, 1, []string{"A"})
	if err := b.RegisterPlayer("", ""); !errors.Is(err, matcherrors.ErrInvalidPlayerID) {
		t.Fatalf("want invalid player id, got %v", err)
	}
	if err := b.RegisterPlayer("has space", ""); !errors.Is(err, matcherrors.ErrInvalidPlayerID) {
		t.Fatalf("want invalid player id, got %v", err)
	}
}

// Scenario 1: basic match.
func TestBasicMatch(t *testing.T) {
	b := newTestBoard(t, 1, 3, []string{"A", "A", "B"})
	register(t, b, "p")

	if err := flip(t, b, "p", 0, 0); err != nil {
		t.Fatalf("first flip: %v", err)
	}
	if faceUp, _ := b.IsFaceUp(0, 0); !faceUp {
		t.Fatal("(0,0) should be face-up")
	}
	if ctl, _ := b.ControllerAt(0, 0); ctl != "p" {
		t.Fatalf("(0,0) controller = %q, want p", ctl)
	}

	if err := flip(t, b, "p", 0, 1); err != nil {
		t.Fatalf("second flip: %v", err)
	}
	for _, c := range []int{0, 1} {
		if ctl, _ := b.ControllerAt(0, c); ctl != "p" {
			t.Fatalf("(0,%d) controller = %q, want p", c, ctl)
		}
	}

	if err := flip(t, b, "p", 0, 2); err != nil {
		t.Fatalf("third flip (triggers cleanup): %v", err)
	}
	for _, c := range []int{0, 1} {
		if pic, _ := b.PictureAt(0, c); pic != "" {
			t.Fatalf("(0,%d) should be empty after match cleanup, got %q", c, pic)
		}
	}
	if ctl, _ := b.ControllerAt(0, 2); ctl != "p" {
		t.Fatalf("(0,2) controller = %q, want p", ctl)
	}
}

// Mismatch, then the next flip's cleanup flips both cards back down.
func TestMismatchThenCleanup(t *testing.T) {
	b := newTestBoard(t, 1, 3, []string{"A", "B", "C"})
	register(t, b, "p")

	must(t, b, flip(t, b, "p", 0, 0))
	must(t, b, flip(t, b, "p", 0, 1))

	for _, c := range []int{0, 1} {
		if faceUp, _ := b.IsFaceUp(0, c); !faceUp {
			t.Fatalf("(0,%d) should stay face-up after mismatch", c)
		}
		if ctl, _ := b.ControllerAt(0, c); ctl != "" {
			t.Fatalf("(0,%d) should be uncontrolled after mismatch, got %q", c, ctl)
		}
	}

	must(t, b, flip(t, b, "p", 0, 2))
	for _, c := range []int{0, 1} {
		if faceUp, _ := b.IsFaceUp(0, c); faceUp {
			t.Fatalf("(0,%d) should be face-down after cleanup", c)
		}
	}
	if ctl, _ := b.ControllerAt(0, 2); ctl != "p" {
		t.Fatalf("(0,2) controller = %q, want p", ctl)
	}
}

// A second player can take over a lingering uncontrolled face-up card.
func TestTakeOverUncontrolledCard(t *testing.T) {
	b := newTestBoard(t, 1, 2, []string{"A", "B"})
	register(t, b, "p1")
	register(t, b, "p2")

	must(t, b, flip(t, b, "p1", 0, 0))
	must(t, b, flip(t, b, "p1", 0, 1))
	// Mismatch: both now face-up, uncontrolled.

	if err := flip(t, b, "p2", 0, 0); err != nil {
		t.Fatalf("p2 take-over: %v", err)
	}
	if ctl, _ := b.ControllerAt(0, 0); ctl != "p2" {
		t.Fatalf("(0,0) controller = %q, want p2", ctl)
	}
	if faceUp, _ := b.IsFaceUp(0, 1); !faceUp {
		t.Fatal("(0,1) should remain face-up; p2 had no prior pair to clean up")
	}
}

// A SECOND flip against an already-controlled cell fails immediately, with
// no blocking, leaving the FIRST card to be cleaned up on the next flip.
func TestControlledSecondDoesNotBlock(t *testing.T) {
	b := newTestBoard(t, 1, 3, []string{"A", "A", "B"})
	register(t, b, "p1")
	register(t, b, "p2")

	must(t, b, flip(t, b, "p2", 0, 1))
	must(t, b, flip(t, b, "p1", 0, 0))

	if err := flip(t, b, "p1", 0, 1); !errors.Is(err, matcherrors.ErrControlled) {
		t.Fatalf("want controlled, got %v", err)
	}
	if faceUp, _ := b.IsFaceUp(0, 0); !faceUp {
		t.Fatal("(0,0) should remain face-up (singleLinger)")
	}
	if ctl, _ := b.ControllerAt(0, 0); ctl != "" {
		t.Fatalf("(0,0) should be released to singleLinger, got controller %q", ctl)
	}

	must(t, b, flip(t, b, "p1", 0, 2))
	if faceUp, _ := b.IsFaceUp(0, 0); faceUp {
		t.Fatal("(0,0) should be flipped down by singleLinger cleanup")
	}
	if ctl, _ := b.ControllerAt(0, 2); ctl != "p1" {
		t.Fatalf("(0,2) controller = %q, want p1", ctl)
	}
}

// Flipping the same cell twice as FIRST and SECOND fails without blocking.
func TestSameCardFails(t *testing.T) {
	b := newTestBoard(t, 1, 3, []string{"A", "A", "B"})
	register(t, b, "p")

	must(t, b, flip(t, b, "p", 0, 0))
	if err := flip(t, b, "p", 0, 0); !errors.Is(err, matcherrors.ErrSameCard) {
		t.Fatalf("want same-card error, got %v", err)
	}
	if faceUp, _ := b.IsFaceUp(0, 0); !faceUp {
		t.Fatal("(0,0) should remain face-up")
	}
	if ctl, _ := b.ControllerAt(0, 0); ctl != "" {
		t.Fatalf("(0,0) should be uncontrolled (released to singleLinger), got %q", ctl)
	}

	must(t, b, flip(t, b, "p", 0, 2))
	if faceUp, _ := b.IsFaceUp(0, 0); faceUp {
		t.Fatal("(0,0) should be flipped down by cleanup")
	}
	if ctl, _ := b.ControllerAt(0, 2); ctl != "p" {
		t.Fatalf("(0,2) controller = %q, want p", ctl)
	}
}

func TestEmptySpaceOnFirstAndSecond(t *testing.T) {
	b := newTestBoard(t, 1, 5, []string{"A", "A", "B", "B", "C"})
	register(t, b, "p")
	register(t, b, "q")

	must(t, b, flip(t, b, "p", 0, 0))
	must(t, b, flip(t, b, "p", 0, 1)) // match -> PairPending{matched}
	must(t, b, flip(t, b, "p", 0, 2)) // cleanup removes (0,0),(0,1); p now controls (0,2)

	// (0,0) is empty.
	if err := flip(t, b, "q", 0, 0); !errors.Is(err, matcherrors.ErrEmptySpace) {
		t.Fatalf("want empty space on FIRST, got %v", err)
	}

	// q holds (0,3) as FIRST, then targets the empty (0,1) as SECOND.
	must(t, b, flip(t, b, "q", 0, 3))
	if err := flip(t, b, "q", 0, 1); !errors.Is(err, matcherrors.ErrEmptySpace) {
		t.Fatalf("want empty space on SECOND, got %v", err)
	}
	if faceUp, _ := b.IsFaceUp(0, 3); !faceUp {
		t.Fatal("(0,3) should remain face-up (singleLinger)")
	}
	if ctl, _ := b.ControllerAt(0, 3); ctl != "" {
		t.Fatalf("(0,3) should be released to singleLinger, got controller %q", ctl)
	}

	must(t, b, flip(t, b, "q", 0, 4)) // cleanup flips (0,3) down; q takes (0,4)
	if faceUp, _ := b.IsFaceUp(0, 3); faceUp {
		t.Fatal("(0,3) should be flipped down by singleLinger cleanup")
	}
	if ctl, _ := b.ControllerAt(0, 4); ctl != "q" {
		t.Fatalf("(0,4) controller = %q, want q", ctl)
	}
}

func TestPicturesDumpRoundTrip(t *testing.T) {
	pics := []string{"A", "B", "C", "D", "E", "F"}
	b := newTestBoard(t, 2, 3, pics)
	want := "2x3\nA\nB\nC\nD\nE\nF\n"
	if got := b.PicturesDump(); got != want {
		t.Fatalf("PicturesDump() = %q, want %q", got, want)
	}
}

func TestSnapshotConsistentAcrossRepeatedLooks(t *testing.T) {
	b := newTestBoard(t, 1, 2, []string{"A", "B"})
	register(t, b, "p")
	s1 := b.Snapshot("p")
	s2 := b.Snapshot("p")
	if len(s1.Cells) != len(s2.Cells) {
		t.Fatal("snapshot cell count changed with no intervening flip")
	}
	for i := range s1.Cells {
		if s1.Cells[i] != s2.Cells[i] {
			t.Fatalf("cell %d differs between identical snapshots: %+v vs %+v", i, s1.Cells[i], s2.Cells[i])
		}
	}
}

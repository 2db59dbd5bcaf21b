package boardfile

import (
	"errors"
	"strings"
	"testing"

	"memory-scramble-server/matcherrors"
)

func TestParseValidBoard(t *testing.T) {
	src := "2x2\nA\nB\nB\nA\n"
	b, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b.NumRows() != 2 || b.NumCols() != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", b.NumRows(), b.NumCols())
	}
	if got := b.PicturesDump(); got != src {
		t.Fatalf("PicturesDump() = %q, want %q (round-trip)", got, src)
	}
}

func TestParseRejectsMalformedHeaders(t *testing.T) {
	headers := []string{"aa", "3x", "x3", "0x2", "-1x2"}
	for _, h := range headers {
		src := h + "\nA\n"
		if _, err := Parse(strings.NewReader(src)); !errors.Is(err, matcherrors.ErrMalformedBoard) {
			t.Errorf("header %q: want malformed board error, got %v", h, err)
		}
	}
}

func TestParseRejectsWrongTokenCount(t *testing.T) {
	_, err := Parse(strings.NewReader("2x2\nA\nB\nB\n"))
	if !errors.Is(err, matcherrors.ErrMalformedBoard) {
		t.Fatalf("want malformed board error, got %v", err)
	}
}

func TestParseRejectsBlankAndWhitespaceTokens(t *testing.T) {
	if _, err := Parse(strings.NewReader("1x2\nA\n\n")); !errors.Is(err, matcherrors.ErrMalformedBoard) {
		t.Fatalf("blank token: want malformed board error, got %v", err)
	}
	if _, err := Parse(strings.NewReader("1x2\nA\nB C\n")); !errors.Is(err, matcherrors.ErrMalformedBoard) {
		t.Fatalf("whitespace token: want malformed board error, got %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); !errors.Is(err, matcherrors.ErrMalformedBoard) {
		t.Fatalf("want malformed board error for empty input, got %v", err)
	}
}

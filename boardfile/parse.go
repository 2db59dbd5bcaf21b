// Package boardfile reads a text description of a grid into an initialized
// *board.Board. It never constructs a partially-valid board — every
// failure is detected before board.New is called.
package boardfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"memory-scramble-server/board"
	"memory-scramble-server/matcherrors"
)

// Parse reads a board description from src:
//
//	<rows>x<cols>
//	<token1>
//	<token2>
//	...
//	<token_{rows*cols}>
//
// Tokens must be non-empty and whitespace-free; trailing newline required;
// blank lines between tokens are errors. On success it returns a Board with
// every cell face-down and uncontrolled.
func Parse(src io.Reader) (*board.Board, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading board: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return nil, &matcherrors.MalformedBoardError{Reason: "missing trailing newline"}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading board header: %w", err)
		}
		return nil, &matcherrors.MalformedBoardError{Line: 1, Reason: "missing header line"}
	}
	rows, cols, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	var tokens []string
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			return nil, &matcherrors.MalformedBoardError{Line: line, Reason: "blank line between tokens"}
		}
		if strings.ContainsAny(text, " \t\r\v\f") {
			return nil, &matcherrors.MalformedBoardError{Line: line, Reason: "card token must not contain whitespace"}
		}
		tokens = append(tokens, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading board tokens: %w", err)
	}

	want := rows * cols
	if len(tokens) != want {
		return nil, &matcherrors.MalformedBoardError{
			Reason: fmt.Sprintf("expected %d card tokens, got %d", want, len(tokens)),
		}
	}

	return board.New(rows, cols, tokens)
}

// parseHeader validates the "<rows>x<cols>" line: both fields must parse as
// positive decimal integers separated by exactly one 'x'.
func parseHeader(line string) (rows, cols int, err error) {
	parts := strings.SplitN(line, "x", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, 0, &matcherrors.MalformedBoardError{Line: 1, Reason: fmt.Sprintf("malformed header %q, want <rows>x<cols>", line)}
	}
	rows, err1 := strconv.Atoi(parts[0])
	cols, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, &matcherrors.MalformedBoardError{Line: 1, Reason: fmt.Sprintf("malformed header %q, want <rows>x<cols>", line)}
	}
	if rows <= 0 || cols <= 0 {
		return 0, 0, &matcherrors.MalformedBoardError{Line: 1, Reason: fmt.Sprintf("rows and cols must be positive, got %dx%d", rows, cols)}
	}
	return rows, cols, nil
}

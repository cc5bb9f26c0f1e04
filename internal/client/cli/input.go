package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"
)

// Test seams for golang.org/x/term.
var (
	isTerminal  = term.IsTerminal
	makeRaw     = term.MakeRaw
	restoreTerm = term.Restore
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetCode reads a sign-in code. On a terminal it reads key by key in raw
// mode and calls onKey with the text typed so far; reading stops when onKey
// returns true. entered reports that the user pressed Enter instead.
// Without a terminal it reads a line with GetSimpleText. Keys are read from
// reader in both cases, so input it has already buffered keeps its order.
func GetCode(reader *bufio.Reader, prompt string, w io.Writer, onKey func(string) bool) (code string, entered bool, err error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		code, err = GetSimpleText(reader, prompt, w)
		return code, true, err
	}

	if _, err := fmt.Fprint(w, prompt+"\r\n> "); err != nil {
		return "", false, err
	}

	state, err := makeRaw(fd)
	if err != nil {
		return "", false, fmt.Errorf("raw mode: %w", err)
	}
	defer restoreTerm(fd, state)

	code, entered, err = readKeys(reader, w, onKey)
	fmt.Fprint(w, "\r\n")
	return code, entered, err
}

const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x08
	keyDelete    = 0x7f
)

// readKeys echoes printable keys from r to w and handles backspace. Ctrl-C
// and Ctrl-D end input with io.EOF.
func readKeys(r io.Reader, w io.Writer, onKey func(string) bool) (string, bool, error) {
	var typed []rune
	buf := make([]byte, 1)

	for {
		n, err := r.Read(buf)
		if err != nil {
			return string(typed), false, err
		}
		if n == 0 {
			continue
		}

		switch b := buf[0]; {
		case b == '\r' || b == '\n':
			return strings.TrimSpace(string(typed)), true, nil
		case b == keyCtrlC || b == keyCtrlD:
			return "", false, io.EOF
		case b == keyBackspace || b == keyDelete:
			if len(typed) == 0 {
				continue
			}
			typed = typed[:len(typed)-1]
			fmt.Fprint(w, "\b \b")
		case b < unicode.MaxASCII && unicode.IsPrint(rune(b)):
			typed = append(typed, rune(b))
			fmt.Fprint(w, string(b))
		default:
			continue
		}

		if onKey != nil && onKey(string(typed)) {
			return string(typed), false, nil
		}
	}
}

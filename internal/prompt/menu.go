package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

type key int

const (
	keyOther key = iota
	keyUp
	keyDown
	keyEnter
	keyInterrupt
	keyDigit
)

// menu is the arrow-key list drawn while the terminal is in raw mode, so
// every line ends in \r\n.
type menu struct {
	title  string
	items  []string
	cursor int
}

func (m *menu) run(r *bufio.Reader, w io.Writer) (int, error) {
	m.draw(w, false)
	for {
		k, digit, err := readKey(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrNoChoice
			}
			return 0, fmt.Errorf("read key: %w", err)
		}
		switch k {
		case keyUp:
			if m.cursor > 0 {
				m.cursor--
			}
		case keyDown:
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case keyDigit:
			if digit >= 1 && digit <= len(m.items) {
				m.cursor = digit - 1
			}
		case keyEnter:
			fmt.Fprintf(w, "\r\n")
			return m.cursor, nil
		case keyInterrupt:
			fmt.Fprintf(w, "\r\n")
			return 0, ErrInterrupted
		default:
			continue
		}
		m.draw(w, true)
	}
}

func (m *menu) draw(w io.Writer, redraw bool) {
	if redraw {
		// back to the title line
		fmt.Fprintf(w, "\x1b[%dA", len(m.items)+1)
	}
	fmt.Fprintf(w, "\r\x1b[2K%s (use arrow keys, enter to confirm)\r\n", m.title)
	for i, item := range m.items {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		fmt.Fprintf(w, "\r\x1b[2K%s %2d) %s\r\n", marker, i+1, item)
	}
}

func readKey(r *bufio.Reader) (key, int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return keyOther, 0, err
	}
	switch {
	case b == 3:
		return keyInterrupt, 0, nil
	case b == '\r' || b == '\n':
		return keyEnter, 0, nil
	case b == 'k':
		return keyUp, 0, nil
	case b == 'j':
		return keyDown, 0, nil
	case b >= '1' && b <= '9':
		return keyDigit, int(b - '0'), nil
	case b == 0x1b:
		// CSI arrows: ESC [ A / ESC [ B, or ESC O A / ESC O B
		next, err := r.ReadByte()
		if err != nil {
			return keyOther, 0, err
		}
		if next != '[' && next != 'O' {
			return keyOther, 0, nil
		}
		code, err := r.ReadByte()
		if err != nil {
			return keyOther, 0, err
		}
		switch code {
		case 'A':
			return keyUp, 0, nil
		case 'B':
			return keyDown, 0, nil
		}
	}
	return keyOther, 0, nil
}

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var (
	// ErrNoChoice is returned when input ends before a valid choice is made.
	ErrNoChoice = errors.New("no choice made")
	// ErrInterrupted is returned when the user presses Ctrl-C inside the
	// interactive menu, where the terminal does not raise SIGINT itself, or
	// when the context passed to Select is done.
	ErrInterrupted = errors.New("selection interrupted")
)

// Prompter asks the user to pick one entry from a list.
type Prompter struct {
	in  io.Reader
	out io.Writer
	raw bool
}

// New returns a Prompter reading from in and drawing on out. raw forces the
// plain numbered-list mode for terminals that cannot render the menu.
func New(in io.Reader, out io.Writer, raw bool) *Prompter {
	return &Prompter{in: in, out: out, raw: raw}
}

// Stdio is New on the process' standard streams; prompts go to stderr so
// stdout stays clean for reports.
func Stdio(raw bool) *Prompter {
	return New(os.Stdin, os.Stderr, raw)
}

// Select shows items as a 1-based list and blocks until one is chosen or ctx
// is done. It returns the 0-based index. There is no timeout of its own.
func (p *Prompter) Select(ctx context.Context, title string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, errors.New("nothing to select from")
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	if !p.raw {
		if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return p.selectInteractive(ctx, f, title, items)
		}
	}
	r := bufio.NewReader(p.in)
	return await(ctx, func() (int, error) { return p.selectRaw(r, title, items) })
}

// await runs a blocking read in its own goroutine so ctx can end the wait.
// The reader is left blocked on cancellation; the process is about to exit.
func await(ctx context.Context, read func() (int, error)) (int, error) {
	type result struct {
		idx int
		err error
	}
	done := make(chan result, 1)
	go func() {
		idx, err := read()
		done <- result{idx: idx, err: err}
	}()
	select {
	case r := <-done:
		return r.idx, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}

func (p *Prompter) selectRaw(r *bufio.Reader, title string, items []string) (int, error) {
	fmt.Fprintln(p.out, title)
	for i, item := range items {
		fmt.Fprintf(p.out, "%2d) %s\n", i+1, item)
	}
	for {
		fmt.Fprintf(p.out, "Enter a number [1-%d]: ", len(items))
		line, err := r.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer != "" {
			n, convErr := strconv.Atoi(answer)
			if convErr == nil && n >= 1 && n <= len(items) {
				return n - 1, nil
			}
			fmt.Fprintf(p.out, "%q is not a number between 1 and %d\n", answer, len(items))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrNoChoice
			}
			return 0, fmt.Errorf("read choice: %w", err)
		}
	}
}

func (p *Prompter) selectInteractive(ctx context.Context, f *os.File, title string, items []string) (int, error) {
	r := bufio.NewReader(f)
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return await(ctx, func() (int, error) { return p.selectRaw(r, title, items) })
	}
	defer term.Restore(fd, state)

	m := &menu{title: title, items: items}
	return await(ctx, func() (int, error) { return m.run(r, p.out) })
}

package decision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"duetgen/internal/remote"
)

type line struct {
	text string
	err  error
}

// Terminal asks on out and reads answers from in. Lines are read by a single
// background goroutine so a cancelled question never loses the next answer.
type Terminal struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan line
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, lines: make(chan line)}
}

func (t *Terminal) start() {
	t.once.Do(func() {
		go func() {
			sc := bufio.NewScanner(t.in)
			for sc.Scan() {
				t.lines <- line{text: sc.Text()}
			}
			err := sc.Err()
			if err == nil {
				err = io.EOF
			}
			for {
				t.lines <- line{err: err}
			}
		}()
	})
}

// ReadLine returns the next trimmed input line.
func (t *Terminal) ReadLine(ctx context.Context) (string, error) {
	t.start()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-t.lines:
		return strings.TrimSpace(l.text), l.err
	}
}

// Printf writes to the terminal output.
func (t *Terminal) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// Decide prints the outcome and waits for "r" (retry) or "l" (local). End of
// input chooses local content.
func (t *Terminal) Decide(ctx context.Context, outcome *remote.Error) (bool, error) {
	t.Printf("\n%s\n", Describe(outcome))
	for {
		t.Printf("[r] retry   [l] use local content > ")
		answer, err := t.ReadLine(ctx)
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "r", "retry":
			return true, nil
		case "l", "local":
			return false, nil
		}
	}
}

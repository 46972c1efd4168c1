package decision

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"duetgen/internal/remote"
)

func TestRetriesCounts(t *testing.T) {
	t.Parallel()

	c := Retries(2)
	ctx := context.Background()
	outcome := &remote.Error{Kind: remote.KindServerError}

	for i, want := range []bool{true, true, false, false} {
		got, err := c.Decide(ctx, outcome)
		if err != nil || got != want {
			t.Fatalf("call %d: got %v, %v want %v", i, got, err, want)
		}
	}
	if c.Asked() != 4 {
		t.Fatalf("expected 4 questions, got %d", c.Asked())
	}
}

func TestStaticHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Static(true).Decide(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTerminalDecide(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("maybe\nr\nl\n"), &out)
	outcome := &remote.Error{Kind: remote.KindRateLimited}

	retry, err := term.Decide(context.Background(), outcome)
	if err != nil || !retry {
		t.Fatalf("expected retry after invalid answer, got %v, %v", retry, err)
	}
	retry, err = term.Decide(context.Background(), outcome)
	if err != nil || retry {
		t.Fatalf("expected local, got %v, %v", retry, err)
	}
	if !strings.Contains(out.String(), "Too many requests") {
		t.Fatalf("expected outcome description, got %q", out.String())
	}

	// End of input falls back to local content.
	retry, err = term.Decide(context.Background(), outcome)
	if err != nil || retry {
		t.Fatalf("expected local on EOF, got %v, %v", retry, err)
	}
}

func TestTerminalDecideCancelled(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	term := NewTerminal(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := term.Decide(ctx, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

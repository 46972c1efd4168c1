// Package decision is the boundary where a person chooses between retrying
// the content service and using local content.
package decision

import (
	"context"
	"sync/atomic"

	"duetgen/internal/remote"
)

// Port resolves to true for "retry remote" and false for "use local content".
// Implementations may block until the user answers; they must return when ctx
// is done.
type Port interface {
	Decide(ctx context.Context, outcome *remote.Error) (bool, error)
}

// Func adapts a function to Port.
type Func func(ctx context.Context, outcome *remote.Error) (bool, error)

func (f Func) Decide(ctx context.Context, outcome *remote.Error) (bool, error) {
	return f(ctx, outcome)
}

// Static always gives the same answer.
func Static(retry bool) Port {
	return Func(func(ctx context.Context, _ *remote.Error) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return retry, nil
	})
}

// Counter answers "retry" a fixed number of times, then "use local content".
type Counter struct {
	left  atomic.Int64
	asked atomic.Int64
}

// Retries returns a Counter allowing n remote retries.
func Retries(n int) *Counter {
	c := &Counter{}
	c.left.Store(int64(n))
	return c
}

func (c *Counter) Decide(ctx context.Context, _ *remote.Error) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.asked.Add(1)
	return c.left.Add(-1) >= 0, nil
}

// Asked is how many times Decide was called.
func (c *Counter) Asked() int {
	return int(c.asked.Load())
}

// Describe turns an outcome into a short message for players.
func Describe(outcome *remote.Error) string {
	if outcome == nil {
		return "Something went wrong. Let's try another one!"
	}
	switch outcome.Kind {
	case remote.KindRateLimited:
		return "Too many requests. Wait a moment and try again!"
	case remote.KindNetworkError:
		return "Connection problem. Let's try again!"
	case remote.KindTimeout:
		return "That took too long. Let's try again!"
	case remote.KindMalformedResponse:
		return "The answer wasn't clear. Let's try again!"
	case remote.KindServerError:
		return "Oops! There was a problem preparing the question. Let's try again!"
	default:
		return "Something went wrong. Let's try another one!"
	}
}

// Package retry drives bounded, delayed re-attempts against the content
// service.
package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"duetgen/internal/metrics"
	"duetgen/internal/remote"
	"duetgen/internal/textfilter"
)

type Config struct {
	MaxAttempts    int           // attempts per round, including the first (default: 3)
	BaseDelay      time.Duration // delay before retry k is k*BaseDelay (default: 1s)
	AttemptTimeout time.Duration // per-attempt deadline (default: 15s)
	MaxRetryAfter  time.Duration // cap on a server-requested delay (default: 30s)

	// Validate cleans successful content; an error makes the attempt a
	// malformed response. Defaults to the length-only text filter.
	Validate func(string) (string, error)

	// Sleep waits d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c Config) WithDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 15 * time.Second
	}
	if c.MaxRetryAfter <= 0 {
		c.MaxRetryAfter = 30 * time.Second
	}
	if c.Validate == nil {
		c.Validate = textfilter.Rules{}.Clean
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	return c
}

// Budget is the retry allowance shared by every Invoke in one round.
// It is not safe for concurrent use.
type Budget struct {
	remaining int
}

func (b *Budget) Remaining() int { return b.remaining }

func (b *Budget) take() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

type Controller struct {
	client remote.Client
	cfg    Config
	logger *zap.Logger
}

func New(client remote.Client, cfg Config, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client: client,
		cfg:    cfg.WithDefaults(),
		logger: logger.Named("retry"),
	}
}

// NewBudget returns a fresh allowance of MaxAttempts-1 retries.
func (c *Controller) NewBudget() *Budget {
	return &Budget{remaining: c.cfg.MaxAttempts - 1}
}

// Invoke sends req until it yields valid content, the error is final, or the
// budget runs out. Failures are returned as *remote.Error; cancellation of
// ctx is returned as ctx.Err().
func (c *Controller) Invoke(ctx context.Context, req *remote.Request, budget *Budget) (string, error) {
	if budget == nil {
		budget = c.NewBudget()
	}

	for retry := 0; ; {
		content, err := c.attempt(ctx, req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		if err == nil {
			cleaned, verr := c.cfg.Validate(content)
			if verr == nil {
				metrics.RemoteAttemptsTotal.WithLabelValues("ok").Inc()
				return cleaned, nil
			}
			err = &remote.Error{Kind: remote.KindMalformedResponse, Message: "content rejected", Err: verr}
		}

		rerr := remote.Classify(err)
		metrics.RemoteAttemptsTotal.WithLabelValues(string(rerr.Kind)).Inc()

		if !rerr.Retriable() {
			c.logger.Warn("remote attempt failed, not retriable",
				zap.String("kind", string(rerr.Kind)),
				zap.Int("status", rerr.Status),
				zap.Error(rerr),
			)
			return "", rerr
		}
		if !budget.take() {
			c.logger.Warn("remote retry budget exhausted",
				zap.String("kind", string(rerr.Kind)),
				zap.Int("status", rerr.Status),
				zap.Error(rerr),
			)
			return "", rerr
		}

		retry++
		delay := c.delay(retry, rerr.RetryAfter)
		c.logger.Info("retrying remote attempt",
			zap.String("kind", string(rerr.Kind)),
			zap.Int("retry", retry),
			zap.Int("budget_left", budget.Remaining()),
			zap.Duration("delay", delay),
		)

		if err := c.cfg.Sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

// attempt runs one call bounded by AttemptTimeout. Only the attempt is
// cancelled when the deadline passes, never the parent.
func (c *Controller) attempt(ctx context.Context, req *remote.Request) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()
	content, err := c.client.Generate(attemptCtx, req)
	metrics.RemoteLatencySeconds.Observe(time.Since(start).Seconds())

	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		if rerr, ok := remote.AsError(err); !ok || rerr.Kind != remote.KindTimeout {
			return "", &remote.Error{Kind: remote.KindTimeout, Message: "attempt deadline exceeded", Err: err}
		}
	}
	return content, err
}

// delay is retry*BaseDelay, or a larger server-requested delay capped at
// MaxRetryAfter.
func (c *Controller) delay(retry int, retryAfter time.Duration) time.Duration {
	d := time.Duration(retry) * c.cfg.BaseDelay
	if retryAfter > c.cfg.MaxRetryAfter {
		retryAfter = c.cfg.MaxRetryAfter
	}
	if retryAfter > d {
		d = retryAfter
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

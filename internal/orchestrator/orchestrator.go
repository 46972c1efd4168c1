// Package orchestrator turns a session round into delivered content: cache,
// remote generation with escalating variants, duplicate suppression, and the
// fallback corpus behind a user decision.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"duetgen/internal/cache"
	"duetgen/internal/decision"
	"duetgen/internal/fallback"
	"duetgen/internal/history"
	"duetgen/internal/metrics"
	"duetgen/internal/prompt"
	"duetgen/internal/remote"
	"duetgen/internal/retry"
	"duetgen/internal/session"
	"duetgen/pkg/logging/logging"
)

// ErrInvalidContext is returned when the session context is incomplete. It is
// the only error GenerateContent returns besides cancellation.
var ErrInvalidContext = errors.New("invalid session context")

type Source string

const (
	SourceCache    Source = "cache"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Result is delivered content plus where it came from. Variant is the
// 0-based request variant that produced remote content; Round counts user
// "retry" decisions plus one.
type Result struct {
	Content string `json:"content"`
	Source  Source `json:"source"`
	Variant int    `json:"variant"`
	Round   int    `json:"round"`
}

// Invoker is the retry controller as seen by the orchestrator.
type Invoker interface {
	NewBudget() *retry.Budget
	Invoke(ctx context.Context, req *remote.Request, budget *retry.Budget) (string, error)
}

type Deps struct {
	Cache    cache.Store
	History  *history.Tracker
	Composer *prompt.Composer
	Invoker  Invoker
	Fallback *fallback.Selector
	Decider  decision.Port
}

func (d Deps) validate() error {
	switch {
	case d.Cache == nil:
		return errors.New("cache is required")
	case d.History == nil:
		return errors.New("history is required")
	case d.Composer == nil:
		return errors.New("composer is required")
	case d.Invoker == nil:
		return errors.New("invoker is required")
	case d.Fallback == nil:
		return errors.New("fallback selector is required")
	case d.Decider == nil:
		return errors.New("decider is required")
	}
	return nil
}

type Orchestrator struct {
	deps      Deps
	sessionID string
	logger    *zap.Logger
	now       func() time.Time
}

func New(deps Deps, logger *zap.Logger) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.NewString()
	return &Orchestrator{
		deps:      deps,
		sessionID: id,
		logger:    logger.Named("orchestrator").With(zap.String("session_id", id)),
		now:       time.Now,
	}, nil
}

func (o *Orchestrator) SessionID() string { return o.sessionID }

func (o *Orchestrator) History() *history.Tracker { return o.deps.History }

// WithDecider returns an orchestrator sharing this one's cache, history and
// session id but asking d at the decision boundary.
func (o *Orchestrator) WithDecider(d decision.Port) *Orchestrator {
	cp := *o
	cp.deps.Decider = d
	return &cp
}

// GenerateContent produces content of the given kind addressed to target.
// sc is not modified.
func (o *Orchestrator) GenerateContent(
	ctx context.Context,
	sc session.Context,
	kind session.ContentType,
	target session.Player,
) (Result, error) {
	sc = sc.With(kind, target)
	key := cache.KeyFor(sc).String()

	logger := logging.L(ctx).With(
		zap.String("session_id", o.sessionID),
		zap.String("content_type", string(kind)),
		zap.Int("player", int(target)),
	)

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if content, hit := o.lookup(ctx, logger, key); hit {
			metrics.GenerationsTotal.WithLabelValues(string(SourceCache)).Inc()
			return Result{Content: content, Source: SourceCache, Round: round}, nil
		}

		if err := sc.Validate(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidContext, err)
		}

		res, last, err := o.tryRemote(ctx, logger, sc, key, round)
		if err != nil {
			return Result{}, err
		}
		if res != nil {
			return *res, nil
		}

		retryRemote, err := o.deps.Decider.Decide(ctx, last)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			logger.Warn("decision failed, using local content", zap.Error(err))
			retryRemote = false
		}

		if retryRemote {
			metrics.DecisionsTotal.WithLabelValues("retry").Inc()
			logger.Info("user chose to retry remote", zap.Int("round", round))
			continue
		}

		metrics.DecisionsTotal.WithLabelValues("fallback").Inc()
		content := o.deps.Fallback.Pick(kind, sc.IntimacyLevel)
		o.deps.History.Record(content)
		metrics.GenerationsTotal.WithLabelValues(string(SourceFallback)).Inc()

		logger.Info("delivered fallback content", zap.Int("round", round))
		return Result{Content: content, Source: SourceFallback, Round: round}, nil
	}
}

// tryRemote walks the request variants in order under one shared retry
// budget. It returns the accepted result, or nil and the last failure.
func (o *Orchestrator) tryRemote(
	ctx context.Context,
	logger *zap.Logger,
	sc session.Context,
	key string,
	round int,
) (*Result, *remote.Error, error) {
	recent := o.deps.History.Recent(prompt.RecentLimit)

	variants, err := o.deps.Composer.Variants(sc, recent)
	if err != nil {
		return nil, nil, fmt.Errorf("orchestrator: compose request: %w", err)
	}

	budget := o.deps.Invoker.NewBudget()
	var last *remote.Error

	for i, instructions := range variants {
		req := &remote.Request{
			Instructions: instructions,
			Context:      remote.NewRequestContext(sc, recent),
			SessionID:    o.sessionID,
			Timestamp:    o.now().UTC(),
		}

		content, err := o.deps.Invoker.Invoke(ctx, req, budget)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			last = remote.Classify(err)
			logger.Warn("variant failed",
				zap.Int("variant", i),
				zap.Int("round", round),
				zap.String("kind", string(last.Kind)),
				zap.Int("budget_left", budget.Remaining()),
			)
			continue
		}

		if o.deps.History.Contains(content) {
			last = &remote.Error{Kind: remote.KindMalformedResponse, Message: "content already delivered"}
			logger.Info("variant returned a duplicate",
				zap.Int("variant", i),
				zap.Int("round", round),
			)
			continue
		}

		if err := o.deps.Cache.Put(ctx, key, content); err != nil {
			logger.Warn("prompt_cache_put_error", zap.Error(err))
		}
		o.deps.History.Record(content)
		metrics.GenerationsTotal.WithLabelValues(string(SourceRemote)).Inc()

		logger.Info("delivered remote content",
			zap.Int("variant", i),
			zap.Int("round", round),
		)
		return &Result{Content: content, Source: SourceRemote, Variant: i, Round: round}, nil, nil
	}

	return nil, last, nil
}

// lookup treats cache errors as a miss.
func (o *Orchestrator) lookup(ctx context.Context, logger *zap.Logger, key string) (string, bool) {
	content, hit, err := o.deps.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("prompt_cache_get_error", zap.Error(err))
		return "", false
	}
	return content, hit
}

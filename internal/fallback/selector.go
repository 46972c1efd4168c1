// Package fallback picks ready-made prompts when the content service cannot
// deliver.
package fallback

import (
	"math/rand/v2"
	"sync"
	"time"

	"duetgen/internal/corpus"
	"duetgen/internal/history"
	"duetgen/internal/metrics"
	"duetgen/internal/session"
)

// Selector draws from a locale's fallback table, skipping entries already in
// history.
type Selector struct {
	locale  *corpus.Locale
	history *history.Tracker

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector uses src for randomness; nil seeds from the clock.
func NewSelector(locale *corpus.Locale, h *history.Tracker, src rand.Source) *Selector {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1)
	}
	return &Selector{
		locale:  locale,
		history: h,
		rng:     rand.New(src),
	}
}

// Pick returns an unused entry for (kind, level). When every entry has been
// used, history is reset and the pick is made from the full list. The
// caller records the result.
func (s *Selector) Pick(kind session.ContentType, level session.IntimacyLevel) string {
	prompts := s.locale.Fallback(kind, level)
	if len(prompts) == 0 {
		// unknown content type; any question is better than nothing
		prompts = s.locale.Fallback(session.Question, session.Conservative)
	}

	available := make([]string, 0, len(prompts))
	for _, p := range prompts {
		if !s.history.Contains(p) {
			available = append(available, p)
		}
	}

	if len(available) == 0 {
		s.history.Reset()
		metrics.FallbackResetsTotal.Inc()
		available = prompts
	}

	s.mu.Lock()
	i := s.rng.IntN(len(available))
	s.mu.Unlock()

	return available[i]
}

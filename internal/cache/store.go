package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"duetgen/internal/session"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 50
)

// Key groups requests expected to yield interchangeable content.
type Key struct {
	ContentType       session.ContentType
	Player            session.Player
	IntimacyLevel     session.IntimacyLevel
	RelationshipStage session.RelationshipStage
	EveningGoal       session.EveningGoal
}

// KeyFor derives the cache key for a session round. Player names are not part
// of the key.
func KeyFor(c session.Context) Key {
	return Key{
		ContentType:       c.ContentType,
		Player:            c.CurrentPlayer,
		IntimacyLevel:     c.IntimacyLevel,
		RelationshipStage: c.RelationshipStage,
		EveningGoal:       c.EveningGoal,
	}
}

// String converts the structured key into the string used by every backend.
func (k Key) String() string {
	// prompt:<TYPE>:<PLAYER>:<INTIMACY>:<STAGE>:<GOAL>
	return fmt.Sprintf("prompt:%s:%d:%s:%s:%s",
		k.ContentType, k.Player, k.IntimacyLevel, k.RelationshipStage, k.EveningGoal)
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 6 || parts[0] != "prompt" {
		return Key{}, false
	}
	player, err := strconv.Atoi(parts[2])
	if err != nil {
		return Key{}, false
	}
	return Key{
		ContentType:       session.ContentType(parts[1]),
		Player:            session.Player(player),
		IntimacyLevel:     session.IntimacyLevel(parts[3]),
		RelationshipStage: session.RelationshipStage(parts[4]),
		EveningGoal:       session.EveningGoal(parts[5]),
	}, true
}

// Store is the interface used by the orchestrator.
// Implementations hold at most a fixed number of entries, evict the oldest
// inserted one first, and never return an entry older than their TTL.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, content string) error
}

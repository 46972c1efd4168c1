package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valkey-io/valkey-go"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendValkey = "valkey"
)

type Config struct {
	Backend    string
	TTL        time.Duration
	MaxEntries int
	Prefix     string
}

// Clients carries whichever shared-cache client the backend needs.
type Clients struct {
	Redis  *redis.Client
	Valkey valkey.Client
}

func NewStore(cfg Config, clients Clients) Store {
	remoteCfg := RedisConfig{
		Prefix:     cfg.Prefix,
		TTL:        cfg.TTL,
		MaxEntries: cfg.MaxEntries,
	}

	switch cfg.Backend {
	case BackendRedis:
		return NewRedisStore(clients.Redis, remoteCfg)
	case BackendValkey:
		return NewValkeyStore(clients.Valkey, remoteCfg)
	default:
		return NewMemoryStore(cfg.MaxEntries, cfg.TTL)
	}
}

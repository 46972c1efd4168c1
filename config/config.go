// Package config loads duetgen settings from defaults, an optional
// config.yaml, a .env file and DUETGEN_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"duetgen/internal/cache"
	"duetgen/internal/corpus"
)

const envPrefix = "DUETGEN"

// Proxy vendors.
const (
	VendorGemini = "gemini"
	VendorOpenAI = "openai"
)

type Config struct {
	Server ServerConfig
	Log    LogConfig
	Game   GameConfig
	Cache  CacheConfig
	Remote RemoteConfig
	Proxy  ProxyConfig
}

type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type LogConfig struct {
	Env   string
	Level string
}

type GameConfig struct {
	Locale          string
	HistoryCapacity int
}

type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	MaxEntries    int
	Prefix        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ValkeyAddr    string
}

// RemoteConfig points the game at the content service.
type RemoteConfig struct {
	BaseURL        string
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
	MaxRetryAfter  time.Duration
}

// ProxyConfig configures the content service itself.
type ProxyConfig struct {
	Port            int
	Vendor          string
	Model           string
	Timeout         time.Duration
	GeminiAPIKey    string
	GeminiBaseURL   string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	RateLimitPerMin int
	RateLimitBurst  int
}

// Load reads configuration. path names an explicit config file; when empty,
// config.yaml is looked up in ./config and . and may be absent.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.RequestTimeout = v.GetDuration("server.request_timeout")
	cfg.Server.MaxBodyBytes = v.GetInt64("server.max_body_bytes")

	cfg.Log.Env = v.GetString("log.env")
	cfg.Log.Level = v.GetString("log.level")

	cfg.Game.Locale = v.GetString("game.locale")
	cfg.Game.HistoryCapacity = v.GetInt("game.history_capacity")

	cfg.Cache.Backend = v.GetString("cache.backend")
	cfg.Cache.TTL = v.GetDuration("cache.ttl")
	cfg.Cache.MaxEntries = v.GetInt("cache.max_entries")
	cfg.Cache.Prefix = v.GetString("cache.prefix")
	cfg.Cache.RedisAddr = v.GetString("cache.redis_addr")
	cfg.Cache.RedisPassword = v.GetString("cache.redis_password")
	cfg.Cache.RedisDB = v.GetInt("cache.redis_db")
	cfg.Cache.ValkeyAddr = v.GetString("cache.valkey_addr")

	cfg.Remote.BaseURL = v.GetString("remote.base_url")
	cfg.Remote.MaxAttempts = v.GetInt("remote.max_attempts")
	cfg.Remote.BaseDelay = v.GetDuration("remote.base_delay")
	cfg.Remote.AttemptTimeout = v.GetDuration("remote.attempt_timeout")
	cfg.Remote.MaxRetryAfter = v.GetDuration("remote.max_retry_after")

	cfg.Proxy.Port = v.GetInt("proxy.port")
	cfg.Proxy.Vendor = v.GetString("proxy.vendor")
	cfg.Proxy.Model = v.GetString("proxy.model")
	cfg.Proxy.Timeout = v.GetDuration("proxy.timeout")
	cfg.Proxy.GeminiAPIKey = v.GetString("proxy.gemini_api_key")
	cfg.Proxy.GeminiBaseURL = v.GetString("proxy.gemini_base_url")
	cfg.Proxy.OpenAIAPIKey = v.GetString("proxy.openai_api_key")
	cfg.Proxy.OpenAIBaseURL = v.GetString("proxy.openai_base_url")
	cfg.Proxy.RateLimitPerMin = v.GetInt("proxy.rate_limit_per_min")
	cfg.Proxy.RateLimitBurst = v.GetInt("proxy.rate_limit_burst")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.max_body_bytes", 64*1024)

	v.SetDefault("log.env", "production")
	v.SetDefault("log.level", "info")

	v.SetDefault("game.locale", corpus.DefaultLocale)
	v.SetDefault("game.history_capacity", 20)

	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", cache.DefaultTTL.String())
	v.SetDefault("cache.max_entries", cache.DefaultMaxEntries)
	v.SetDefault("cache.prefix", "duetgen")
	v.SetDefault("cache.redis_addr", "127.0.0.1:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.valkey_addr", "127.0.0.1:6379")

	v.SetDefault("remote.base_url", "http://127.0.0.1:8081")
	v.SetDefault("remote.max_attempts", 3)
	v.SetDefault("remote.base_delay", "1s")
	v.SetDefault("remote.attempt_timeout", "15s")
	v.SetDefault("remote.max_retry_after", "30s")

	v.SetDefault("proxy.port", 8081)
	v.SetDefault("proxy.vendor", VendorGemini)
	v.SetDefault("proxy.model", "gemini-2.0-flash")
	v.SetDefault("proxy.timeout", "30s")
	v.SetDefault("proxy.gemini_api_key", "")
	v.SetDefault("proxy.gemini_base_url", "")
	v.SetDefault("proxy.openai_api_key", "")
	v.SetDefault("proxy.openai_base_url", "https://api.openai.com")
	v.SetDefault("proxy.rate_limit_per_min", 30)
	v.SetDefault("proxy.rate_limit_burst", 0)
}

// Validate checks settings every command needs. Vendor keys are checked by
// ValidateProxy.
func (c *Config) Validate() error {
	locales := make([]any, 0)
	for _, name := range corpus.Names() {
		locales = append(locales, name)
	}

	return validation.Errors{
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.Server.RequestTimeout, validation.Required),
			validation.Field(&c.Server.MaxBodyBytes, validation.Required, validation.Min(int64(1024))),
		),
		"game": validation.ValidateStruct(&c.Game,
			validation.Field(&c.Game.Locale, validation.Required, validation.In(locales...)),
			validation.Field(&c.Game.HistoryCapacity, validation.Required, validation.Min(1)),
		),
		"cache": validation.ValidateStruct(&c.Cache,
			validation.Field(&c.Cache.Backend, validation.Required,
				validation.In(cache.BackendMemory, cache.BackendRedis, cache.BackendValkey)),
			validation.Field(&c.Cache.TTL, validation.Required),
			validation.Field(&c.Cache.MaxEntries, validation.Required, validation.Min(1)),
			validation.Field(&c.Cache.RedisAddr, validation.When(c.Cache.Backend == cache.BackendRedis, validation.Required)),
			validation.Field(&c.Cache.ValkeyAddr, validation.When(c.Cache.Backend == cache.BackendValkey, validation.Required)),
		),
		"remote": validation.ValidateStruct(&c.Remote,
			validation.Field(&c.Remote.BaseURL, validation.Required),
			validation.Field(&c.Remote.MaxAttempts, validation.Required, validation.Min(1), validation.Max(10)),
		),
		"proxy": validation.ValidateStruct(&c.Proxy,
			validation.Field(&c.Proxy.Port, validation.Required, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.Proxy.Vendor, validation.Required, validation.In(VendorGemini, VendorOpenAI)),
			validation.Field(&c.Proxy.Model, validation.Required),
			validation.Field(&c.Proxy.RateLimitPerMin, validation.Min(0)),
		),
	}.Filter()
}

// ValidateProxy checks that the chosen vendor has credentials.
func (c *Config) ValidateProxy() error {
	return validation.ValidateStruct(&c.Proxy,
		validation.Field(&c.Proxy.GeminiAPIKey, validation.When(c.Proxy.Vendor == VendorGemini, validation.Required)),
		validation.Field(&c.Proxy.OpenAIAPIKey, validation.When(c.Proxy.Vendor == VendorOpenAI, validation.Required)),
		validation.Field(&c.Proxy.OpenAIBaseURL, validation.When(c.Proxy.Vendor == VendorOpenAI, validation.Required)),
	)
}

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseSize = 64 * 1024

type Config struct {
	// required
	BaseURL string

	// Optional connection pool settings
	MaxIdleConns        int // default: 100
	MaxIdleConnsPerHost int // default: 100

	// Custom HTTP client (for testing or special configs)
	HTTPClient *http.Client
}

// Validate checks required fields only.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BaseURL is required")
	}
	return nil
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c

	// Normalize BaseURL: trim trailing slashes so we can safely append paths.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 100
	}
	return cfg
}

// HTTPClient talks to the content service over HTTP. It makes a single
// attempt per call; the caller owns deadlines and retries.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewHTTPClient creates a client for the content service at cfg.BaseURL.
func NewHTTPClient(cfg Config, logger *zap.Logger) (*HTTPClient, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: defaultTransport(cfg),
		}
	}

	return &HTTPClient{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.Named("remote"),
		now:        time.Now,
	}, nil
}

func defaultTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Generate sends one request. Every failure is returned as an *Error.
func (c *HTTPClient) Generate(ctx context.Context, req *Request) (string, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return "", &Error{Kind: KindClientError, Message: "invalid request", Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &Error{Kind: KindClientError, Message: "marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+Path, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindClientError, Message: "build HTTP request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		rerr := Classify(err)
		c.logger.Debug("content service unreachable",
			zap.String("kind", string(rerr.Kind)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return "", rerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", Classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := &Error{
			Kind:       KindForStatus(resp.StatusCode),
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header, c.now()),
		}

		var er ErrorResponse
		if jsonErr := json.Unmarshal(raw, &er); jsonErr == nil && (er.ErrorCode != "" || er.Message != "") {
			rerr.Code = er.ErrorCode
			rerr.Message = er.Message
		} else {
			rerr.Message = truncate(string(raw), 200)
		}

		c.logger.Debug("content service error",
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(rerr.Kind)),
			zap.String("error_code", rerr.Code),
			zap.Duration("retry_after", rerr.RetryAfter),
			zap.Duration("duration", time.Since(start)),
		)
		return "", rerr
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &Error{
			Kind:    KindMalformedResponse,
			Status:  resp.StatusCode,
			Message: "decode response",
			Err:     err,
		}
	}

	c.logger.Debug("content service responded",
		zap.Int("status", resp.StatusCode),
		zap.Int("content_len", len(out.Text())),
		zap.Duration("duration", time.Since(start)),
	)

	return out.Text(), nil
}

// Close releases resources held by the client.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// truncate limits string length for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

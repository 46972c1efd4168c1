package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey string
	// BaseURL overrides the Gemini endpoint (tests, proxies).
	BaseURL    string
	Timeout    time.Duration // default: 30s
	HTTPClient *http.Client
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client  *genai.Client
	gen     GenerationConfig
	timeout time.Duration
	logger  *zap.Logger
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, gen GenerationConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("invalid config: APIKey is required")
	}
	if gen.Model == "" {
		return nil, errors.New("invalid config: model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	return &GeminiGenerator{
		client:  client,
		gen:     gen,
		timeout: cfg.Timeout,
		logger:  logger.Named("gemini"),
	}, nil
}

func (g *GeminiGenerator) config() *genai.GenerateContentConfig {
	block := func(c genai.HarmCategory) *genai.SafetySetting {
		return &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove}
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.gen.Temperature),
		TopP:            genai.Ptr(g.gen.TopP),
		TopK:            genai.Ptr(float32(g.gen.TopK)),
		MaxOutputTokens: int32(g.gen.MaxOutputTokens),
		SafetySettings: []*genai.SafetySetting{
			block(genai.HarmCategoryHarassment),
			block(genai.HarmCategoryHateSpeech),
			block(genai.HarmCategorySexuallyExplicit),
			block(genai.HarmCategoryDangerousContent),
		},
	}
}

func (g *GeminiGenerator) Generate(parentCtx context.Context, prompt string) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(parentCtx, g.timeout)
	defer cancel()

	result, err := g.client.Models.GenerateContent(ctx, g.gen.Model, genai.Text(prompt), g.config())
	if err != nil {
		if se := geminiStatus(err); se != nil {
			g.logger.Error("gemini provider error",
				zap.Int("status", se.Status),
				zap.String("error_type", se.Type),
				zap.String("error_message", se.Message),
			)
			return "", se
		}
		g.logger.Error("gemini request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", err
	}
	if result == nil {
		return "", errors.New("gemini: empty result")
	}

	text := strings.TrimSpace(result.Text())
	g.logger.Info("gemini request completed",
		zap.String("model", g.gen.Model),
		zap.Int("response_len", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

func geminiStatus(err error) *StatusError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Status: apiErr.Code, Type: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Status: apiErrPtr.Code, Type: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return nil
}

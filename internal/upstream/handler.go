// Package upstream serves the content-service side of the wire format: it
// forwards instructions to a model vendor and answers with cleaned text.
package upstream

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"duetgen/internal/llm"
	"duetgen/internal/remote"
	"duetgen/internal/textfilter"
	"duetgen/pkg/logging/logging"
)

// Error codes sent in the errorCode field.
const (
	CodeRateLimited    = "rate_limited"
	CodeInvalidRequest = "invalid_request"
	CodeAPIKeyInvalid  = "api_key_invalid"
	CodeNetworkError   = "network_error"
	CodeTimeout        = "timeout"
	CodeEmptyResponse  = "empty_response"
	CodeAPIError       = "api_error"
)

// Metadata describes a generated answer.
type Metadata struct {
	Vendor         string    `json:"vendor"`
	Timestamp      time.Time `json:"timestamp"`
	PromptLength   int       `json:"promptLength"`
	ResponseLength int       `json:"responseLength"`
}

type generateResponse struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Handler holds dependencies for POST /api/generate.
type Handler struct {
	gen    llm.Generator
	rules  textfilter.Rules
	vendor string
	now    func() time.Time
}

func NewHandler(gen llm.Generator, rules textfilter.Rules, vendor string) *Handler {
	return &Handler{
		gen:    gen,
		rules:  rules,
		vendor: vendor,
		now:    time.Now,
	}
}

// Generate handles POST /api/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req remote.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.L(ctx).Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "request body is not valid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	logger := logging.L(ctx).With(
		zap.String("session_id", req.SessionID),
		zap.String("vendor", h.vendor),
	)
	if req.Context != nil {
		logger = logger.With(zap.String("prompt_type", req.Context.PromptType))
	}

	text, err := h.gen.Generate(ctx, req.Instructions)
	if err != nil {
		status, code, msg := mapVendorError(err)
		logger.Warn("vendor generation failed",
			zap.Error(err),
			zap.Int("status", status),
			zap.String("error_code", code),
			zap.Duration("duration", time.Since(start)),
		)
		writeError(w, status, code, msg)
		return
	}

	cleaned, err := h.rules.Clean(text)
	if err != nil {
		logger.Warn("vendor text rejected",
			zap.Error(err),
			zap.Int("raw_length", len(text)),
		)
		writeError(w, http.StatusInternalServerError, CodeEmptyResponse, "the generated text was empty or invalid")
		return
	}

	logger.Info("generated content",
		zap.Int("prompt_length", len(req.Instructions)),
		zap.Int("response_length", len(cleaned)),
		zap.Duration("duration", time.Since(start)),
	)

	writeJSON(w, http.StatusOK, generateResponse{
		Content: cleaned,
		Metadata: Metadata{
			Vendor:         h.vendor,
			Timestamp:      h.now().UTC(),
			PromptLength:   len(req.Instructions),
			ResponseLength: len(cleaned),
		},
	})
}

// mapVendorError converts a vendor failure into the status and errorCode
// players' clients understand.
func mapVendorError(err error) (int, string, string) {
	var se *llm.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, CodeRateLimited, "too many requests, try again in a few seconds"
		case http.StatusBadRequest:
			return http.StatusBadRequest, CodeInvalidRequest, "the vendor rejected the request"
		case http.StatusUnauthorized, http.StatusForbidden:
			return http.StatusForbidden, CodeAPIKeyInvalid, "the vendor API key is invalid"
		default:
			return http.StatusInternalServerError, CodeAPIError, "the vendor API failed"
		}
	}

	switch remote.Classify(err).Kind {
	case remote.KindTimeout:
		return http.StatusGatewayTimeout, CodeTimeout, "the vendor did not answer in time"
	case remote.KindNetworkError:
		return http.StatusServiceUnavailable, CodeNetworkError, "could not reach the vendor"
	default:
		return http.StatusInternalServerError, CodeAPIError, "the vendor API failed"
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, remote.ErrorResponse{ErrorCode: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"duetgen/internal/decision"
	"duetgen/internal/orchestrator"
	"duetgen/internal/session"
	"duetgen/pkg/logging/logging"
)

// MaxRemoteRetries bounds how often one request may send the user back to
// the content service after exhaustion.
const MaxRemoteRetries = 3

// ContentHandler serves one game session over HTTP.
type ContentHandler struct {
	orch *orchestrator.Orchestrator
}

func NewContentHandler(orch *orchestrator.Orchestrator) *ContentHandler {
	return &ContentHandler{orch: orch}
}

type contentRequest struct {
	session.Context
	// RemoteRetries is how many times the decision boundary answers "retry
	// remote" before falling back to local content.
	RemoteRetries int `json:"remote_retries"`
}

func (r contentRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RemoteRetries, validation.Min(0), validation.Max(MaxRemoteRetries)),
	)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type historyResponse struct {
	Items []string `json:"items"`
}

// Content handles POST /v1/content.
func (h *ContentHandler) Content(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: "request body is not valid JSON"})
		return
	}
	if err := req.validate(); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	orch := h.orch.WithDecider(decision.Retries(req.RemoteRetries))
	res, err := orch.GenerateContent(ctx, req.Context, req.ContentType, req.CurrentPlayer)
	switch {
	case err == nil:
	case errors.Is(err, orchestrator.ErrInvalidContext):
		logger.Info("invalid session context", zap.Error(err))
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid_context", Message: err.Error()})
		return
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("content generation timed out", zap.Duration("duration", time.Since(start)))
		h.writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "timeout"})
		return
	case errors.Is(err, context.Canceled):
		logger.Info("client went away", zap.Duration("duration", time.Since(start)))
		return
	default:
		logger.Error("content generation failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	logger.Info("content_delivered",
		zap.String("source", string(res.Source)),
		zap.Int("variant", res.Variant),
		zap.Int("round", res.Round),
		zap.Duration("total_latency_ms", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, res)
}

// History handles GET /v1/history.
func (h *ContentHandler) History(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, historyResponse{Items: h.orch.History().Items()})
}

// ResetHistory handles DELETE /v1/history.
func (h *ContentHandler) ResetHistory(w http.ResponseWriter, r *http.Request) {
	h.orch.History().Reset()
	logging.L(r.Context()).Info("history reset")
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON is a small helper to send JSON responses consistently.
func (h *ContentHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"duetgen/internal/llm"
	"duetgen/internal/remote"
	"duetgen/internal/textfilter"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.text, f.err
}

func post(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, remote.Path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	return rec
}

func validRequest() remote.Request {
	return remote.Request{
		Instructions: "Write one question for Dana.",
		Context:      &remote.RequestContext{Player1: "Dana", Player2: "Noa", PromptType: "question", CurrentPlayer: 1},
		SessionID:    "s-1",
		Timestamp:    time.Now(),
	}
}

func TestGenerateCleansVendorText(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: `  Question: "What made you smile today, really?"  `}
	h := NewHandler(gen, textfilter.Rules{Prefixes: []string{"Question:"}}, "gemini")

	rec := post(t, h, validRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp remote.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text() != "What made you smile today, really?" {
		t.Fatalf("unexpected content: %q", resp.Text())
	}
	if gen.prompt != "Write one question for Dana." {
		t.Fatalf("instructions not forwarded: %q", gen.prompt)
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "unused text here"}
	h := NewHandler(gen, textfilter.Rules{}, "gemini")

	for name, body := range map[string]any{
		"invalid json":         "{",
		"missing instructions": remote.Request{SessionID: "s-1"},
	} {
		rec := post(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
		var er remote.ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &er)
		if er.ErrorCode != CodeInvalidRequest {
			t.Fatalf("%s: unexpected error code %q", name, er.ErrorCode)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("vendor must not be called for bad requests")
	}
}

func TestGenerateMapsVendorErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"rate limited", &llm.StatusError{Status: 429}, http.StatusTooManyRequests, CodeRateLimited},
		{"bad request", &llm.StatusError{Status: 400}, http.StatusBadRequest, CodeInvalidRequest},
		{"unauthorized", &llm.StatusError{Status: 401}, http.StatusForbidden, CodeAPIKeyInvalid},
		{"forbidden", fmt.Errorf("wrapped: %w", &llm.StatusError{Status: 403}), http.StatusForbidden, CodeAPIKeyInvalid},
		{"vendor 500", &llm.StatusError{Status: 500}, http.StatusInternalServerError, CodeAPIError},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, http.StatusServiceUnavailable, CodeNetworkError},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeGenerator{err: tt.err}, textfilter.Rules{}, "openai")
			rec := post(t, h, validRequest())

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var er remote.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if er.ErrorCode != tt.wantCode || er.Message == "" {
				t.Fatalf("unexpected error body: %+v", er)
			}
		})
	}
}

func TestGenerateRejectsUnusableText(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeGenerator{text: `""`}, textfilter.Rules{}, "gemini")
	rec := post(t, h, validRequest())

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var er remote.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.ErrorCode != CodeEmptyResponse {
		t.Fatalf("unexpected error code %q", er.ErrorCode)
	}
}

// The proxy and remote.HTTPClient speak the same wire format.
func TestGenerateRoundTripsThroughRemoteClient(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeGenerator{text: "What song reminds you of us?"}, textfilter.Rules{}, "gemini")
	srv := httptest.NewServer(http.HandlerFunc(h.Generate))
	defer srv.Close()

	client, err := remote.NewHTTPClient(remote.Config{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	req := validRequest()
	got, err := client.Generate(context.Background(), &req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "What song reminds you of us?" {
		t.Fatalf("unexpected content: %q", got)
	}

	limited := NewHandler(&fakeGenerator{err: &llm.StatusError{Status: 429}}, textfilter.Rules{}, "gemini")
	srv2 := httptest.NewServer(http.HandlerFunc(limited.Generate))
	defer srv2.Close()

	client2, err := remote.NewHTTPClient(remote.Config{BaseURL: srv2.URL}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client2.Generate(context.Background(), &req)
	re, ok := remote.AsError(err)
	if !ok || re.Kind != remote.KindRateLimited || re.Code != CodeRateLimited {
		t.Fatalf("unexpected error: %#v", err)
	}
}

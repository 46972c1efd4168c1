package remote

import (
	"context"
	"errors"
	"time"

	"duetgen/internal/session"
)

// Path is where the content service accepts generation requests.
const Path = "/api/generate"

// RequestContext is the structured game context sent alongside instructions.
type RequestContext struct {
	Player1           string   `json:"player1"`
	Player2           string   `json:"player2"`
	RelationshipStage string   `json:"relationshipStage"`
	EveningGoal       string   `json:"eveningGoal"`
	IntimacyLevel     string   `json:"intimacyLevel"`
	CurrentPlayer     int      `json:"currentPlayer"`
	PromptType        string   `json:"promptType"`
	History           []string `json:"history,omitempty"`
}

// NewRequestContext copies the session fields onto the wire shape.
func NewRequestContext(sc session.Context, history []string) *RequestContext {
	return &RequestContext{
		Player1:           sc.Player1,
		Player2:           sc.Player2,
		RelationshipStage: string(sc.RelationshipStage),
		EveningGoal:       string(sc.EveningGoal),
		IntimacyLevel:     string(sc.IntimacyLevel),
		CurrentPlayer:     int(sc.CurrentPlayer),
		PromptType:        string(sc.ContentType),
		History:           history,
	}
}

type Request struct {
	Instructions string          `json:"instructions"`
	Context      *RequestContext `json:"context,omitempty"`
	SessionID    string          `json:"sessionId,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (r *Request) Validate() error {
	if r == nil {
		return errors.New("request is nil")
	}
	if r.Instructions == "" {
		return errors.New("instructions are required")
	}
	return nil
}

// Response is the success body. Older deployments answer with "response"
// instead of "content".
type Response struct {
	Content  string `json:"content,omitempty"`
	Response string `json:"response,omitempty"`
}

func (r Response) Text() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Response
}

// ErrorResponse is the failure body.
type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// Client performs exactly one generation attempt.
type Client interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req *Request) (string, error)

func (f ClientFunc) Generate(ctx context.Context, req *Request) (string, error) {
	return f(ctx, req)
}

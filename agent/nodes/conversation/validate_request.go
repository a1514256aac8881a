package conversationnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	statex "github.com/rayadhanush/Dining-concierge-bot/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Messages []string
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session        *statex.DialogueSession
	Interpretation contractx.Interpretation

	Response contractx.TurnResponse
	Failed   bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}

package concierge

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	nodex "github.com/rayadhanush/Dining-concierge-bot/agent/nodes/conversation"
	statex "github.com/rayadhanush/Dining-concierge-bot/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// Service turns free-text chat messages into dialogue turns. It keeps the
// slots collected so far in the session store between messages.
type Service struct {
	store       statex.Store
	interpreter contractx.Interpreter
	turns       contractx.TurnHandler

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	interpreter contractx.Interpreter,
	turns contractx.TurnHandler,
) (*Service, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if interpreter == nil {
		return nil, errors.New("interpreter is required")
	}
	if turns == nil {
		return nil, errors.New("turn handler is required")
	}

	s := &Service{
		store:       store,
		interpreter: interpreter,
		turns:       turns,
		now:         time.Now,
	}

	graphRunner, err := s.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleMessage returns the bot messages for one user message.
func (s *Service) HandleMessage(ctx context.Context, sessionID string, text string) ([]string, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

package contract

import (
	"context"

	preferencex "github.com/rayadhanush/Dining-concierge-bot/agent/preference"
)

// TurnHandler runs one dialogue turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req TurnRequest) (TurnResponse, error)
}

type Interpreter interface {
	Interpret(ctx context.Context, req InterpretRequest) (Interpretation, error)
}

// PreferenceCache remembers the last completed search per session. Get never
// fails: errors read as a miss.
type PreferenceCache interface {
	Get(ctx context.Context, sessionID string) (preferencex.Record, bool)
	Put(ctx context.Context, sessionID string, rec preferencex.Record) error
	Update(ctx context.Context, sessionID string, rec preferencex.Record) error
}

type Submitter interface {
	Submit(ctx context.Context, req FulfillmentRequest) error
}

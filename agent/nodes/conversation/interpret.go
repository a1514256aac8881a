package conversationnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

// Interpret asks the NLU for the intent and slot values of the message. When
// a dialogue is already running, a failed interpretation falls back to the
// active intent so the raw text can still answer the elicited slot.
func Interpret(
	ctx context.Context,
	in *GraphState,
	interpreter contractx.Interpreter,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	out, err := interpreter.Interpret(ctx, contractx.InterpretRequest{
		Text:         in.Text,
		ActiveIntent: in.Session.IntentName,
		SlotToElicit: in.Session.SlotToElicit,
		Slots:        in.Session.Slots,
	})
	if err != nil {
		if in.Session.IntentName == "" {
			return nil, err
		}
		log.Ctx(ctx).Warn().
			Err(err).
			Str("session_id", in.SessionID).
			Str("intent", in.Session.IntentName).
			Msg("interpretation failed, keeping active intent")
		out = contractx.Interpretation{Intent: in.Session.IntentName}
	}

	in.Interpretation = out
	return in, nil
}

package conversationnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

// RunTurn hands the merged session to the dialogue handler. A handler error
// becomes the generic failure reply and the session is kept for a retry.
func RunTurn(
	ctx context.Context,
	in *GraphState,
	turns contractx.TurnHandler,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	resp, err := turns.HandleTurn(ctx, contractx.TurnRequest{
		IntentName: in.Session.IntentName,
		SessionID:  in.SessionID,
		SessionState: contractx.SessionState{
			SessionAttributes: in.Session.SessionAttributes,
			Intent: contractx.Intent{
				Name:  in.Session.IntentName,
				Slots: in.Session.Slots,
			},
		},
	})
	if err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("session_id", in.SessionID).
			Str("intent", in.Session.IntentName).
			Msg("dialogue turn failed")
		in.Failed = true
		in.Response = contractx.Close(
			in.Session.SessionAttributes,
			in.Session.IntentName,
			contractx.IntentStateFailed,
			contractx.FailureMessage,
		)
		return in, nil
	}

	in.Response = resp
	return in, nil
}

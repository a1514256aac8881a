package nodes

import (
	"fmt"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

const ConfirmationMessage = "Thanks, you're all set! You should receive suggestions soon."

func Close(in *GraphState) (contractx.TurnResponse, error) {
	if in == nil {
		return contractx.TurnResponse{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return contractx.Close(in.Attributes, in.IntentName, contractx.IntentStateFulfilled, ConfirmationMessage), nil
}

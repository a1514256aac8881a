package nodes

import (
	"fmt"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

const GreetingMessage = "Hi there, how can I help you?"

func Greet(in *GraphState) (contractx.TurnResponse, error) {
	if in == nil {
		return contractx.TurnResponse{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return contractx.Close(in.Attributes, in.IntentName, contractx.IntentStateFulfilled, GreetingMessage), nil
}

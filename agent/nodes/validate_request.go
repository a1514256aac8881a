package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

func ValidateRequest(req contractx.TurnRequest) (*GraphState, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is empty", contractx.ErrValidation)
	}

	intentName := req.Intent()
	if intentName == "" {
		return nil, fmt.Errorf("%w: intent name is empty", contractx.ErrValidation)
	}

	attrs := make(map[string]string, len(req.SessionState.SessionAttributes))
	for k, v := range req.SessionState.SessionAttributes {
		attrs[k] = v
	}

	slots := req.SessionState.Intent.Slots.Clone()
	confirmation, _ := slots.Get(slotx.Confirmation)

	return &GraphState{
		SessionID:    sessionID,
		IntentName:   intentName,
		Slots:        slots,
		Attributes:   attrs,
		Confirmation: strings.ToLower(confirmation),
	}, nil
}

// RouteIntent picks the next node for the requested intent.
func RouteIntent(in *GraphState, greetNode, reservationNode string) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	switch in.IntentName {
	case contractx.IntentGreeting:
		return greetNode, nil
	case contractx.IntentDiningSuggestions:
		return reservationNode, nil
	default:
		return "", fmt.Errorf("%w: %s", contractx.ErrUnsupportedIntent, in.IntentName)
	}
}

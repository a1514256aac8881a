package nodes

import (
	preferencex "github.com/rayadhanush/Dining-concierge-bot/agent/preference"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

// GraphState flows through the dialogue turn graph.
type GraphState struct {
	SessionID  string
	IntentName string
	Slots      slotx.Set
	Attributes map[string]string

	// Confirmation is the normalised answer to the "reuse last search" offer,
	// empty when the user has not been asked or has not answered.
	Confirmation string
	Resumed      bool

	Result slotx.Result
	Cached *preferencex.Record
}

func (s *GraphState) ConfirmationGiven() bool {
	return s.Confirmation != ""
}

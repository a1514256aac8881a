package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
	statex "github.com/rayadhanush/Dining-concierge-bot/agent/state"
)

// SaveSession writes back what the turn decided: an elicitation keeps the
// dialogue open, a close ends it.
func SaveSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	resp := in.Response.SessionState
	if resp.SessionAttributes != nil {
		st.SessionAttributes = resp.SessionAttributes
	}

	switch {
	case in.Failed:
		st.SlotToElicit = ""
	case in.Response.IsElicit():
		st.IntentName = resp.Intent.Name
		st.Slots = resp.Intent.Slots
		if st.Slots == nil {
			st.Slots = slotx.Set{}
		}
		st.SlotToElicit = resp.DialogAction.SlotToElicit
	default:
		st.Reset()
	}

	st.Version++
	st.UpdatedAt = in.Now
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if err := store.Save(ctx, st); err != nil {
		return nil, err
	}
	return in, nil
}

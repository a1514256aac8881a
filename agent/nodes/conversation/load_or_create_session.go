package conversationnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	statex "github.com/rayadhanush/Dining-concierge-bot/agent/state"
)

func LoadOrCreateSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	switch {
	case err == nil:
		st.EnsureMaps()
	case errors.Is(err, statex.ErrStateNotFound):
		st = statex.NewDialogueSession(in.SessionID, in.Now)
	default:
		return nil, fmt.Errorf("load session: %w", err)
	}

	in.Session = st
	return in, nil
}

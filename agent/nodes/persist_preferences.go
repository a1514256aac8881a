package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	preferencex "github.com/rayadhanush/Dining-concierge-bot/agent/preference"
)

// PersistPreferences records the completed search. A fresh dialogue stores a
// new record, a declined offer overwrites it, and a resumed search leaves it
// untouched. Write failures never block the reservation.
func PersistPreferences(
	ctx context.Context,
	in *GraphState,
	cache contractx.PreferenceCache,
) (*GraphState, error) {
	if in == nil || !in.Result.Valid {
		return nil, fmt.Errorf("%w: slots are not valid", contractx.ErrValidation)
	}
	if in.Resumed {
		return in, nil
	}

	rec := preferencex.FromSlots(in.Slots)
	var err error
	op := "put"
	if in.ConfirmationGiven() {
		op = "update"
		err = cache.Update(ctx, in.SessionID, rec)
	} else {
		err = cache.Put(ctx, in.SessionID, rec)
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("session_id", in.SessionID).
			Str("op", op).
			Msg("failed to store preferences")
	}
	return in, nil
}

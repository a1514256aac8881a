package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

// ResumeCached fills the slots from the cached search when the user accepted
// the offer and has not started a new location or cuisine.
func ResumeCached(
	ctx context.Context,
	in *GraphState,
	cache contractx.PreferenceCache,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Confirmation != "yes" || in.Slots.Has(slotx.Location) || in.Slots.Has(slotx.CuisineType) {
		return in, nil
	}

	rec, ok := cache.Get(ctx, in.SessionID)
	if !ok {
		return in, nil
	}
	rec.ApplyTo(in.Slots)
	in.Resumed = true
	in.Cached = &rec

	log.Ctx(ctx).Debug().
		Str("session_id", in.SessionID).
		Str("cuisine", rec.CuisineType).
		Msg("resumed cached search")
	return in, nil
}

package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	preferencex "github.com/rayadhanush/Dining-concierge-bot/agent/preference"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

// Elicit clears the violated slot and asks for it again. A missing location
// on a fresh dialogue first offers to reuse the last search of the session.
func Elicit(
	ctx context.Context,
	in *GraphState,
	cache contractx.PreferenceCache,
) (contractx.TurnResponse, error) {
	if in == nil || in.Result.Valid {
		return contractx.TurnResponse{}, fmt.Errorf("%w: nothing to elicit", contractx.ErrValidation)
	}

	violated := in.Result.Slot
	in.Slots.Clear(violated)

	if violated == slotx.Location && !in.ConfirmationGiven() {
		if rec, ok := cache.Get(ctx, in.SessionID); ok && rec.CanResume() {
			log.Ctx(ctx).Debug().Str("session_id", in.SessionID).Msg("offering cached search")
			return contractx.ElicitSlot(in.Attributes, in.IntentName, in.Slots, slotx.Confirmation, ResumePrompt(rec)), nil
		}
	}

	log.Ctx(ctx).Debug().
		Str("session_id", in.SessionID).
		Str("slot", violated).
		Msg("eliciting slot")
	return contractx.ElicitSlot(in.Attributes, in.IntentName, in.Slots, violated, in.Result.Prompt), nil
}

func ResumePrompt(rec preferencex.Record) string {
	return fmt.Sprintf(
		"Welcome back! Last time you searched for %s food in %s for %s people on %s at %s. Would you like to use the same preferences? (yes/no)",
		rec.CuisineType,
		rec.Location,
		rec.NumberOfPeople,
		slotx.FormatDate(rec.Date),
		rec.Time,
	)
}

package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

func SubmitRequest(
	ctx context.Context,
	in *GraphState,
	submitter contractx.Submitter,
) (*GraphState, error) {
	if in == nil || !in.Result.Valid {
		return nil, fmt.Errorf("%w: slots are not valid", contractx.ErrValidation)
	}

	req := contractx.FulfillmentRequestFromSlots(in.Slots)
	if err := submitter.Submit(ctx, req); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("session_id", in.SessionID).
			Str("cuisine", req.CuisineType).
			Msg("failed to submit fulfillment request")
		return nil, fmt.Errorf("%w: %w", contractx.ErrSubmitFailed, err)
	}
	return in, nil
}

package nodes

import (
	"fmt"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

type SlotValidator interface {
	Validate(slots slotx.Set) slotx.Result
}

func ValidateSlots(in *GraphState, validator SlotValidator) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Result = validator.Validate(in.Slots)
	return in, nil
}

func RouteValidation(in *GraphState, elicitNode, fulfilNode string) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Result.Valid {
		return fulfilNode, nil
	}
	return elicitNode, nil
}

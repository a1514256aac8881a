package conversationnode

import (
	"fmt"
	"strings"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

var affirmations = map[string]bool{
	"yes":  true,
	"y":    true,
	"yeah": true,
	"yep":  true,
	"sure": true,
	"ok":   true,
	"okay": true,
}

// NormaliseConfirmation maps an answer to the resume offer onto "yes" or "no".
func NormaliseConfirmation(answer string) string {
	if affirmations[strings.Trim(strings.ToLower(strings.TrimSpace(answer)), ".!")] {
		return "yes"
	}
	return "no"
}

// MergeSlots folds the interpretation into the session slots. Switching
// intent starts from an empty slot set. The raw text answers the elicited
// slot when the NLU found nothing for it.
func MergeSlots(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	intent := in.Interpretation.Intent
	if intent == "" {
		intent = in.Session.IntentName
	}
	if intent == "" {
		return nil, fmt.Errorf("%w: no intent recognised", contractx.ErrUnsupportedIntent)
	}

	slots := slotx.Set{}
	elicited := ""
	if intent == in.Session.IntentName {
		slots = in.Session.Slots.Clone()
		elicited = in.Session.SlotToElicit
	}

	for name, value := range in.Interpretation.Slots {
		if name == slotx.Confirmation {
			value = NormaliseConfirmation(value)
		}
		slots[name] = &slotx.Slot{Value: slotx.Value{
			InterpretedValue: value,
			OriginalValue:    in.Text,
		}}
	}

	if elicited != "" {
		if _, ok := in.Interpretation.Slots[elicited]; !ok {
			value := in.Text
			if elicited == slotx.Confirmation {
				value = NormaliseConfirmation(value)
			}
			slots[elicited] = &slotx.Slot{Value: slotx.Value{
				InterpretedValue: value,
				OriginalValue:    in.Text,
			}}
		}
	}

	in.Session.IntentName = intent
	in.Session.Slots = slots
	return in, nil
}

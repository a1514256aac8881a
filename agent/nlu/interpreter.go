package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

var knownSlots = map[string]bool{
	slotx.Location:       true,
	slotx.CuisineType:    true,
	slotx.NumberOfPeople: true,
	slotx.Date:           true,
	slotx.Time:           true,
	slotx.Email:          true,
	slotx.Confirmation:   true,
}

type interpreterLLMOutput struct {
	Intent string         `json:"intent"`
	Slots  map[string]any `json:"slots,omitempty"`
}

// Interpreter reads intent and slot values out of free text with a chat model.
type Interpreter struct {
	runner compose.Runnable[map[string]any, interpreterLLMOutput]
	now    func() time.Time
}

func NewInterpreter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Interpreter, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: interpreter prompt", contractx.ErrPromptMissing)
	}
	runner, err := compileStructuredLLMGraph[interpreterLLMOutput](ctx, chatModel, systemPrompt, "nlu.interpreter_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile interpreter graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Interpreter{runner: runner, now: time.Now}, nil
}

func (i *Interpreter) Interpret(ctx context.Context, req contractx.InterpretRequest) (contractx.Interpretation, error) {
	if strings.TrimSpace(req.Text) == "" {
		return contractx.Interpretation{}, fmt.Errorf("%w: text is required", contractx.ErrValidation)
	}

	known := map[string]string{}
	for name := range knownSlots {
		if v, ok := req.Slots.Get(name); ok {
			known[name] = v
		}
	}
	payload := map[string]any{
		"user_message":   req.Text,
		"active_intent":  req.ActiveIntent,
		"slot_to_elicit": req.SlotToElicit,
		"known_slots":    known,
		"today":          i.now().Format("2006-01-02 (Monday)"),
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.Interpretation{}, fmt.Errorf("%w: marshal interpreter payload: %v", contractx.ErrValidation, err)
	}

	out, err := i.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.Interpretation{}, fmt.Errorf("%w: interpreter invoke: %v", contractx.ErrModelInvoke, err)
	}

	return normalize(out, req.ActiveIntent)
}

func normalize(out interpreterLLMOutput, activeIntent string) (contractx.Interpretation, error) {
	intent := strings.TrimSpace(out.Intent)
	if intent == "" {
		intent = strings.TrimSpace(activeIntent)
	}
	switch intent {
	case contractx.IntentGreeting, contractx.IntentDiningSuggestions:
	case "":
		return contractx.Interpretation{}, fmt.Errorf("%w: intent is empty and no intent is active", contractx.ErrSchemaViolation)
	default:
		return contractx.Interpretation{}, fmt.Errorf("%w: unsupported intent=%q", contractx.ErrSchemaViolation, intent)
	}

	slots := make(map[string]string, len(out.Slots))
	for name, raw := range out.Slots {
		if !knownSlots[name] || raw == nil {
			continue
		}
		value := strings.TrimSpace(fmt.Sprint(raw))
		if value == "" {
			continue
		}
		if name == slotx.Confirmation {
			value = strings.ToLower(value)
		}
		slots[name] = value
	}

	return contractx.Interpretation{Intent: intent, Slots: slots}, nil
}

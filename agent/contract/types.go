package contract

import (
	"fmt"
	"strconv"
	"strings"

	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

const (
	IntentGreeting          = "GreetingIntent"
	IntentDiningSuggestions = "DiningSuggestionsIntent"

	ContentTypePlainText = "PlainText"

	// FailureMessage is sent when a turn could not be completed.
	FailureMessage = "Sorry, I could not place your request right now. Please try again later."
)

type DialogActionType string

const (
	DialogActionElicitSlot DialogActionType = "ElicitSlot"
	DialogActionClose      DialogActionType = "Close"
	DialogActionDelegate   DialogActionType = "Delegate"
)

type IntentState string

const (
	IntentStateInProgress          IntentState = "InProgress"
	IntentStateFulfilled           IntentState = "Fulfilled"
	IntentStateFailed              IntentState = "Failed"
	IntentStateReadyForFulfillment IntentState = "ReadyForFulfillment"
)

type Intent struct {
	Name  string      `json:"name"`
	Slots slotx.Set   `json:"slots,omitempty"`
	State IntentState `json:"state,omitempty"`
}

type DialogAction struct {
	Type         DialogActionType `json:"type"`
	SlotToElicit string           `json:"slotToElicit,omitempty"`
}

type SessionState struct {
	SessionAttributes map[string]string `json:"sessionAttributes"`
	Intent            Intent            `json:"intent"`
	DialogAction      *DialogAction     `json:"dialogAction,omitempty"`
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type TurnRequest struct {
	IntentName   string       `json:"intentName,omitempty"`
	SessionID    string       `json:"sessionId" validate:"required"`
	SessionState SessionState `json:"sessionState"`
}

// Intent returns the top-level intent name, falling back to the session intent.
func (r TurnRequest) Intent() string {
	if name := strings.TrimSpace(r.IntentName); name != "" {
		return name
	}
	return strings.TrimSpace(r.SessionState.Intent.Name)
}

type TurnResponse struct {
	SessionState SessionState `json:"sessionState"`
	Messages     []Message    `json:"messages"`
}

// Contents returns the plain text of every message.
func (r TurnResponse) Contents() []string {
	out := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		out = append(out, m.Content)
	}
	return out
}

func (r TurnResponse) IsElicit() bool {
	return r.SessionState.DialogAction != nil && r.SessionState.DialogAction.Type == DialogActionElicitSlot
}

func ElicitSlot(attrs map[string]string, intentName string, slots slotx.Set, slotToElicit, prompt string) TurnResponse {
	return TurnResponse{
		SessionState: SessionState{
			SessionAttributes: attrs,
			Intent: Intent{
				Name:  intentName,
				Slots: slots,
				State: IntentStateInProgress,
			},
			DialogAction: &DialogAction{
				Type:         DialogActionElicitSlot,
				SlotToElicit: slotToElicit,
			},
		},
		Messages: plainText(prompt),
	}
}

func Close(attrs map[string]string, intentName string, state IntentState, message string) TurnResponse {
	return TurnResponse{
		SessionState: SessionState{
			SessionAttributes: attrs,
			Intent: Intent{
				Name:  intentName,
				State: state,
			},
			DialogAction: &DialogAction{Type: DialogActionClose},
		},
		Messages: plainText(message),
	}
}

func plainText(content string) []Message {
	return []Message{{ContentType: ContentTypePlainText, Content: content}}
}

// FulfillmentRequest is the validated reservation handed to the worker.
type FulfillmentRequest struct {
	Location       string `json:"location"`
	CuisineType    string `json:"cuisineType"`
	NumberOfPeople int    `json:"numberOfPeople"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Email          string `json:"email"`
}

// FulfillmentRequestFromSlots copies the six reservation slots. The set must
// already be valid.
func FulfillmentRequestFromSlots(slots slotx.Set) FulfillmentRequest {
	get := func(name string) string {
		v, _ := slots.Get(name)
		return v
	}
	return FulfillmentRequest{
		Location:       get(slotx.Location),
		CuisineType:    get(slotx.CuisineType),
		NumberOfPeople: slotx.PartySize(slots),
		Date:           get(slotx.Date),
		Time:           get(slotx.Time),
		Email:          get(slotx.Email),
	}
}

func (r FulfillmentRequest) Summary() string {
	return fmt.Sprintf("Reservation request for %s in %s", r.CuisineType, r.Location)
}

func (r FulfillmentRequest) PartySize() string {
	return strconv.Itoa(r.NumberOfPeople)
}

func (r FulfillmentRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Location) == "":
		return fmt.Errorf("%w: location is empty", ErrValidation)
	case strings.TrimSpace(r.CuisineType) == "":
		return fmt.Errorf("%w: cuisine type is empty", ErrValidation)
	case r.NumberOfPeople < slotx.MinPartySize || r.NumberOfPeople > slotx.MaxPartySize:
		return fmt.Errorf("%w: party size %d out of range", ErrValidation, r.NumberOfPeople)
	case strings.TrimSpace(r.Email) == "":
		return fmt.Errorf("%w: email is empty", ErrValidation)
	}
	return nil
}

type InterpretRequest struct {
	Text         string    `json:"text"`
	ActiveIntent string    `json:"active_intent,omitempty"`
	SlotToElicit string    `json:"slot_to_elicit,omitempty"`
	Slots        slotx.Set `json:"slots,omitempty"`
}

// Interpretation is what the NLU found in one user message.
type Interpretation struct {
	Intent string            `json:"intent"`
	Slots  map[string]string `json:"slots,omitempty"`
}

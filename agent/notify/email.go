package notify

import (
	"fmt"
	"strings"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

const (
	SuggestionSubject = "Dining Concierge - Restaurant Suggestions"
	FailureSubject    = "Dining Concierge - No Suggestions Found"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

type Suggestion struct {
	Name    string
	Cuisine string
	Address string
}

// SuggestionEmail lists every suggestion in order.
func SuggestionEmail(req contractx.FulfillmentRequest, suggestions []Suggestion) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello! Here are my restaurant suggestions for %d people on %s at %s:\n\n",
		req.NumberOfPeople, slotx.FormatDate(req.Date), req.Time)
	for i, s := range suggestions {
		fmt.Fprintf(&b, "%d. %s (%s), located at %s\n", i+1, s.Name, s.Cuisine, s.Address)
	}
	b.WriteString("\nEnjoy your dining experience!")

	return Email{
		To:      req.Email,
		Subject: SuggestionSubject,
		Body:    b.String(),
	}
}

func FailureEmail(req contractx.FulfillmentRequest) Email {
	return Email{
		To:      req.Email,
		Subject: FailureSubject,
		Body: fmt.Sprintf(
			"Unfortunately, no %s restaurants found in %s for %d people on %s at %s. Please try again later.",
			req.CuisineType, req.Location, req.NumberOfPeople, slotx.FormatDate(req.Date), req.Time,
		),
	}
}

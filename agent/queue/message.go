package queue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

var ErrMalformedMessage = errors.New("malformed fulfillment message")

const (
	DataTypeString = "String"
	DataTypeNumber = "Number"
)

type Attribute struct {
	DataType    string `json:"dataType"`
	StringValue string `json:"stringValue"`
}

// Message is the transport-neutral form of a fulfillment request: a human
// readable body plus one typed attribute per reservation field.
type Message struct {
	Body       string               `json:"body"`
	Attributes map[string]Attribute `json:"attributes"`
}

func NewMessage(req contractx.FulfillmentRequest) Message {
	return Message{
		Body: req.Summary(),
		Attributes: map[string]Attribute{
			slotx.Location:       {DataType: DataTypeString, StringValue: req.Location},
			slotx.CuisineType:    {DataType: DataTypeString, StringValue: req.CuisineType},
			slotx.NumberOfPeople: {DataType: DataTypeNumber, StringValue: req.PartySize()},
			slotx.Date:           {DataType: DataTypeString, StringValue: req.Date},
			slotx.Time:           {DataType: DataTypeString, StringValue: req.Time},
			slotx.Email:          {DataType: DataTypeString, StringValue: req.Email},
		},
	}
}

// Request reads the reservation back out of the attributes. The body is not
// parsed.
func (m Message) Request() (contractx.FulfillmentRequest, error) {
	get := func(name string) (string, error) {
		attr, ok := m.Attributes[name]
		if !ok || strings.TrimSpace(attr.StringValue) == "" {
			return "", fmt.Errorf("%w: attribute %s is missing", ErrMalformedMessage, name)
		}
		return strings.TrimSpace(attr.StringValue), nil
	}

	var (
		req contractx.FulfillmentRequest
		err error
	)
	if req.Location, err = get(slotx.Location); err != nil {
		return req, err
	}
	if req.CuisineType, err = get(slotx.CuisineType); err != nil {
		return req, err
	}
	party, err := get(slotx.NumberOfPeople)
	if err != nil {
		return req, err
	}
	if req.NumberOfPeople, err = strconv.Atoi(party); err != nil {
		return req, fmt.Errorf("%w: NumberOfPeople %q is not a number", ErrMalformedMessage, party)
	}
	if req.Date, err = get(slotx.Date); err != nil {
		return req, err
	}
	if req.Time, err = get(slotx.Time); err != nil {
		return req, err
	}
	if req.Email, err = get(slotx.Email); err != nil {
		return req, err
	}
	return req, nil
}

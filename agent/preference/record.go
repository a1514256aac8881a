package preference

import (
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

// Record is the last completed search of a session. It is stored with all six
// fields or not at all.
type Record struct {
	Location       string `json:"Location"`
	CuisineType    string `json:"CuisineType"`
	NumberOfPeople string `json:"NumberOfPeople"`
	Date           string `json:"Date"`
	Time           string `json:"Time"`
	Email          string `json:"Email"`
}

func FromSlots(slots slotx.Set) Record {
	get := func(name string) string {
		v, _ := slots.Get(name)
		return v
	}
	return Record{
		Location:       get(slotx.Location),
		CuisineType:    get(slotx.CuisineType),
		NumberOfPeople: get(slotx.NumberOfPeople),
		Date:           get(slotx.Date),
		Time:           get(slotx.Time),
		Email:          get(slotx.Email),
	}
}

func (r Record) Complete() bool {
	for _, v := range r.fields() {
		if v == "" {
			return false
		}
	}
	return true
}

// CanResume reports whether enough of the previous search is known to offer it again.
func (r Record) CanResume() bool {
	return r.Location != "" && r.CuisineType != ""
}

// ApplyTo copies every field into slots as interpreted values.
func (r Record) ApplyTo(slots slotx.Set) {
	for name, v := range r.fields() {
		slots.SetInterpreted(name, v)
	}
}

func (r Record) fields() map[string]string {
	return map[string]string{
		slotx.Location:       r.Location,
		slotx.CuisineType:    r.CuisineType,
		slotx.NumberOfPeople: r.NumberOfPeople,
		slotx.Date:           r.Date,
		slotx.Time:           r.Time,
		slotx.Email:          r.Email,
	}
}

func recordFromHash(hash map[string]string) Record {
	return Record{
		Location:       hash[slotx.Location],
		CuisineType:    hash[slotx.CuisineType],
		NumberOfPeople: hash[slotx.NumberOfPeople],
		Date:           hash[slotx.Date],
		Time:           hash[slotx.Time],
		Email:          hash[slotx.Email],
	}
}

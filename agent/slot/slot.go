package slot

import "strings"

// Slot names used by the dining dialogue.
const (
	Location       = "Location"
	CuisineType    = "CuisineType"
	NumberOfPeople = "NumberOfPeople"
	Date           = "Date"
	Time           = "Time"
	Email          = "Email"
	Confirmation   = "Confirmation"
)

// Required lists the reservation slots in validation priority order.
var Required = []string{Location, CuisineType, NumberOfPeople, Date, Time, Email}

// Value holds what the understanding service normalised and what the user typed.
type Value struct {
	InterpretedValue string `json:"interpretedValue,omitempty"`
	OriginalValue    string `json:"originalValue,omitempty"`
}

// Resolve prefers the interpreted value and falls back to the original text.
func (v Value) Resolve() string {
	if s := strings.TrimSpace(v.InterpretedValue); s != "" {
		return s
	}
	return strings.TrimSpace(v.OriginalValue)
}

type Slot struct {
	Value Value `json:"value"`
}

// Set maps slot names to holders. A missing key means the slot was never
// collected; a key mapped to nil means it was cleared and must be elicited again.
type Set map[string]*Slot

func Interpreted(s string) *Slot {
	return &Slot{Value: Value{InterpretedValue: s, OriginalValue: s}}
}

// Get returns the resolved value of name, or "" and false when the slot is
// absent, cleared, or blank.
func (s Set) Get(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	holder, ok := s[name]
	if !ok || holder == nil {
		return "", false
	}
	v := holder.Value.Resolve()
	return v, v != ""
}

func (s Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Interpreted returns only the interpreted value of name.
func (s Set) Interpreted(name string) string {
	if s == nil || s[name] == nil {
		return ""
	}
	return strings.TrimSpace(s[name].Value.InterpretedValue)
}

func (s Set) IsCleared(name string) bool {
	holder, ok := s[name]
	return ok && holder == nil
}

// Clear keeps the key but drops its value.
func (s Set) Clear(name string) {
	s[name] = nil
}

func (s Set) SetInterpreted(name, value string) {
	s[name] = Interpreted(value)
}

func (s Set) Clone() Set {
	if s == nil {
		return Set{}
	}
	out := make(Set, len(s))
	for k, v := range s {
		if v == nil {
			out[k] = nil
			continue
		}
		cp := *v
		out[k] = &cp
	}
	return out
}

package slot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinPartySize = 1
	MaxPartySize = 8
)

var (
	DefaultCities = []string{
		"new york", "los angeles", "chicago", "houston", "philadelphia", "nyc", "manhattan",
	}
	DefaultCuisines = []string{
		"vegetarian", "seafood", "indian", "chinese", "italian", "japanese", "mexican",
	}

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	defaultValidator = NewValidator(DefaultCities, DefaultCuisines)
)

// Result is Valid, or the first violated slot with the prompt to re-ask it.
type Result struct {
	Valid  bool
	Slot   string
	Prompt string
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(name, prompt string) Result {
	return Result{Slot: name, Prompt: prompt}
}

// Validator checks a Set against the supported cities and cuisines.
type Validator struct {
	cities   map[string]struct{}
	cuisines map[string]struct{}
}

func NewValidator(cities, cuisines []string) *Validator {
	if len(cities) == 0 {
		cities = DefaultCities
	}
	if len(cuisines) == 0 {
		cuisines = DefaultCuisines
	}
	return &Validator{
		cities:   lowerSet(cities),
		cuisines: lowerSet(cuisines),
	}
}

// Validate checks the default city and cuisine lists.
func Validate(slots Set) Result {
	return defaultValidator.Validate(slots)
}

// Validate reports only the first violation in Required order.
func (v *Validator) Validate(slots Set) Result {
	location, ok := slots.Get(Location)
	if !ok {
		return invalid(Location, "Where are you looking to eat?")
	}
	if !contains(v.cities, location) {
		return invalid(Location, fmt.Sprintf("We currently do not support '%s'. Can you try a different city?", location))
	}

	cuisine, ok := slots.Get(CuisineType)
	if !ok {
		return invalid(CuisineType, "What type of cuisine are you looking for?")
	}
	if !contains(v.cuisines, cuisine) {
		return invalid(CuisineType, fmt.Sprintf("We currently do not support '%s'. Can you try a different cuisine?", cuisine))
	}

	party, ok := slots.Get(NumberOfPeople)
	if !ok {
		return invalid(NumberOfPeople, "How many people will be dining?")
	}
	n, err := strconv.Atoi(party)
	if err != nil {
		return invalid(NumberOfPeople, "How many people will be dining?")
	}
	if n < MinPartySize || n > MaxPartySize {
		return invalid(NumberOfPeople, "You can make a reservation for 1 to 8 guests. How many guests?")
	}

	date, ok := slots.Get(Date)
	if !ok {
		return invalid(Date, "What date would you like to make your reservation?")
	}
	if _, ok := ParseDate(date); !ok {
		return invalid(Date, "I did not understand your reservation date. When would you like to make your reservation?")
	}

	if !slots.Has(Time) {
		return invalid(Time, "What time do you plan to dine?")
	}

	email, ok := slots.Get(Email)
	if !ok {
		return invalid(Email, "Please provide your email address.")
	}
	if !emailPattern.MatchString(email) {
		return invalid(Email, "Please provide a valid email address.")
	}

	return valid()
}

// PartySize parses NumberOfPeople; callers validate first.
func PartySize(slots Set) int {
	raw, _ := slots.Get(NumberOfPeople)
	n, _ := strconv.Atoi(raw)
	return n
}

func lowerSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

func contains(set map[string]struct{}, value string) bool {
	_, ok := set[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

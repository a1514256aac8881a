package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/interpreter.txt
var interpreterRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Interpreter string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Interpreter: strings.TrimSpace(interpreterRaw),
	}
}

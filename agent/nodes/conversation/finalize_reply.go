package conversationnode

import (
	"fmt"
	"strings"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	out := make([]string, 0, len(in.Response.Messages))
	for _, msg := range in.Response.Contents() {
		if msg = strings.TrimSpace(msg); msg != "" {
			out = append(out, msg)
		}
	}
	return GraphOutput{Messages: out}, nil
}

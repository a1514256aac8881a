package httpapi

import "strings"

const MessageTypeUnstructured = "unstructured"

type Unstructured struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type ChatMessage struct {
	Type         string       `json:"type"`
	Unstructured Unstructured `json:"unstructured"`
}

type ChatRequest struct {
	SessionID string        `json:"sessionId,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

// Text returns the first non-empty unstructured message.
func (r ChatRequest) Text() string {
	for _, m := range r.Messages {
		if text := strings.TrimSpace(m.Unstructured.Text); text != "" {
			return text
		}
	}
	return ""
}

type ChatResponse struct {
	SessionID string        `json:"sessionId"`
	Messages  []ChatMessage `json:"messages"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

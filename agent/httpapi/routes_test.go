package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

type fakeChat struct {
	mu        sync.Mutex
	replies   []string
	err       error
	sessionID string
	text      string
}

func (f *fakeChat) HandleMessage(ctx context.Context, sessionID string, text string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionID = sessionID
	f.text = text
	return f.replies, f.err
}

type fakeTurns struct {
	mu   sync.Mutex
	resp contractx.TurnResponse
	err  error
	req  contractx.TurnRequest
}

func (f *fakeTurns) HandleTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.req = req
	return f.resp, f.err
}

func newTestServer(chat ChatService, turns contractx.TurnHandler) *httptest.Server {
	s := NewServer(chat, turns)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return httptest.NewServer(s.Handler())
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(nil, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func TestChatbotReplies(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{replies: []string{"Where are you looking to eat?"}}
	srv := newTestServer(chat, nil)
	defer srv.Close()

	resp := post(t, srv.URL+"/chatbot", `{"sessionId":"abc","messages":[{"type":"unstructured","unstructured":{"text":" dinner please "}}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if chat.sessionID != "abc" || chat.text != "dinner please" {
		t.Fatalf("chat got session=%q text=%q", chat.sessionID, chat.text)
	}
	if out.SessionID != "abc" || len(out.Messages) != 1 {
		t.Fatalf("response = %+v", out)
	}
	msg := out.Messages[0]
	if msg.Type != MessageTypeUnstructured || msg.Unstructured.Text != "Where are you looking to eat?" {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Unstructured.ID != "id-1" || msg.Unstructured.Timestamp != 1700000000123 {
		t.Fatalf("message metadata = %+v", msg.Unstructured)
	}
}

func TestChatbotAssignsSessionAndFallback(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{}
	srv := newTestServer(chat, nil)
	defer srv.Close()

	resp := post(t, srv.URL+"/chatbot", `{"messages":[{"type":"unstructured","unstructured":{"text":"hi"}}]}`)
	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SessionID != "id-1" || chat.sessionID != "id-1" {
		t.Fatalf("session id = %q, chat saw %q", out.SessionID, chat.sessionID)
	}
	if len(out.Messages) != 1 || out.Messages[0].Unstructured.Text != FallbackMessage {
		t.Fatalf("messages = %+v", out.Messages)
	}
}

func TestChatbotErrors(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{err: errors.New("boom")}
	srv := newTestServer(chat, nil)
	defer srv.Close()

	resp := post(t, srv.URL+"/chatbot", `{"messages":[{"type":"unstructured","unstructured":{"text":"  "}}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty text status = %d, want 400", resp.StatusCode)
	}

	resp = post(t, srv.URL+"/chatbot", `{"messages":[{"type":"unstructured","unstructured":{"text":"hi"}}]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != 500 || body.Message != "Internal Server Error" {
		t.Fatalf("body = %+v", body)
	}
}

func TestDialogueTurn(t *testing.T) {
	t.Parallel()

	turns := &fakeTurns{resp: contractx.Close(map[string]string{"k": "v"}, contractx.IntentGreeting, contractx.IntentStateFulfilled, "Hi there, how can I help you?")}
	srv := newTestServer(nil, turns)
	defer srv.Close()

	resp := post(t, srv.URL+"/dialogue/turn", `{"sessionId":"s-1","sessionState":{"sessionAttributes":{"k":"v"},"intent":{"name":"GreetingIntent","slots":{"Location":null}}}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out contractx.TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SessionState.DialogAction == nil || out.SessionState.DialogAction.Type != contractx.DialogActionClose {
		t.Fatalf("response = %+v", out)
	}
	if turns.req.Intent() != contractx.IntentGreeting || !turns.req.SessionState.Intent.Slots.IsCleared("Location") {
		t.Fatalf("request = %+v", turns.req)
	}
}

func TestDialogueTurnSubmitFailure(t *testing.T) {
	t.Parallel()

	turns := &fakeTurns{err: fmt.Errorf("%w: %w", contractx.ErrSubmitFailed, errors.New("queue down"))}
	srv := newTestServer(nil, turns)
	defer srv.Close()

	resp := post(t, srv.URL+"/dialogue/turn", `{"sessionId":"s-1","sessionState":{"sessionAttributes":{"a":"b"},"intent":{"name":"DiningSuggestionsIntent"}}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out contractx.TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SessionState.Intent.State != contractx.IntentStateFailed || out.Contents()[0] != contractx.FailureMessage {
		t.Fatalf("response = %+v", out)
	}
	if out.SessionState.SessionAttributes["a"] != "b" {
		t.Fatalf("attributes = %v", out.SessionState.SessionAttributes)
	}
}

func TestDialogueTurnBadRequests(t *testing.T) {
	t.Parallel()

	turns := &fakeTurns{err: fmt.Errorf("%w: BookFlight", contractx.ErrUnsupportedIntent)}
	srv := newTestServer(nil, turns)
	defer srv.Close()

	cases := []string{
		`{not json`,
		`{"sessionState":{"intent":{"name":"GreetingIntent"}}}`,
		`{"sessionId":"s","sessionState":{"intent":{"name":"BookFlight"}}}`,
	}
	for _, body := range cases {
		if resp := post(t, srv.URL+"/dialogue/turn", body); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, resp.StatusCode)
		}
	}

	turns.mu.Lock()
	turns.err = errors.New("graph exploded")
	turns.mu.Unlock()
	if resp := post(t, srv.URL+"/dialogue/turn", `{"sessionId":"s","sessionState":{"intent":{"name":"GreetingIntent"}}}`); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

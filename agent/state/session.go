package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

// DialogueSession is what the conversation service remembers between chat
// turns: the active intent, the slots collected so far, and which slot the
// last reply asked for.
type DialogueSession struct {
	SessionID         string            `json:"session_id"`
	IntentName        string            `json:"intent_name,omitempty"`
	Slots             slotx.Set         `json:"slots,omitempty"`
	SessionAttributes map[string]string `json:"session_attributes,omitempty"`
	SlotToElicit      string            `json:"slot_to_elicit,omitempty"`
	Version           int               `json:"version"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func NewDialogueSession(sessionID string, now time.Time) *DialogueSession {
	return &DialogueSession{
		SessionID:         sessionID,
		Slots:             slotx.Set{},
		SessionAttributes: map[string]string{},
		Version:           1,
		UpdatedAt:         now.UTC(),
	}
}

func (s *DialogueSession) EnsureMaps() {
	if s.Slots == nil {
		s.Slots = slotx.Set{}
	}
	if s.SessionAttributes == nil {
		s.SessionAttributes = map[string]string{}
	}
}

// Reset ends the active intent. Session attributes survive.
func (s *DialogueSession) Reset() {
	s.IntentName = ""
	s.Slots = slotx.Set{}
	s.SlotToElicit = ""
}

func (s *DialogueSession) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if s.SlotToElicit != "" && s.IntentName == "" {
		return fmt.Errorf("slot %q elicited without an active intent", s.SlotToElicit)
	}
	return nil
}

// touch stamps the session before it is written.
func (s *DialogueSession) touch() {
	if s.Version <= 0 {
		s.Version = 1
	}
	s.EnsureMaps()
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	} else {
		s.UpdatedAt = s.UpdatedAt.UTC()
	}
}

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps sessions in process. Sessions are copied on the way in and
// out so callers never share slot maps.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*DialogueSession, error) {
	key, err := storeKey("", sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	raw, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}

	var st DialogueSession
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	st.EnsureMaps()
	return &st, nil
}

func (s *MemoryStore) Save(_ context.Context, st *DialogueSession) error {
	if st == nil {
		return ErrNilSessionState
	}
	key, err := storeKey("", st.SessionID)
	if err != nil {
		return err
	}
	st.touch()
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	s.mu.Lock()
	s.sessions[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	key, err := storeKey("", sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	return nil
}

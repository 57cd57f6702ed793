package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/fraudsight/fraudsight/internal/agent"
)

// maxSessionExchanges caps how much conversation a session retains. Only a
// window of it reaches prompts, so there is no point keeping more.
const maxSessionExchanges = 20

// sessionStore keeps per-session conversation history in memory. Sessions
// are ephemeral; they do not survive a restart.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string][]agent.Exchange
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string][]agent.Exchange{}}
}

// get returns the history for id, creating a fresh session when id is
// empty or unknown. The returned id identifies the session in either case.
func (s *sessionStore) get(id string) (string, []agent.Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	history, ok := s.sessions[id]
	if !ok {
		s.sessions[id] = nil
	}
	return id, history
}

// append records a completed exchange on the session.
func (s *sessionStore) append(id string, ex agent.Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[id], ex)
	if len(history) > maxSessionExchanges {
		history = history[len(history)-maxSessionExchanges:]
	}
	s.sessions[id] = history
}

// Package memory holds the per-user conversation window injected into model
// requests. It is deliberately ephemeral: nothing survives a restart, and no
// user ever sees another user's turns.
package memory

import "sync"

// Role labels one side of an exchange.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single line of conversation.
type Turn struct {
	Role    Role
	Content string
}

// Store keeps a bounded ordered log of turns per user. It is safe for
// concurrent use. With a window of N exchanges the stored sequence never
// exceeds 2N turns (user + assistant per exchange); the oldest turns are
// evicted first.
type Store struct {
	mu     sync.Mutex
	window int
	turns  map[string][]Turn
}

// DefaultWindow is the number of exchanges kept when no window is configured.
const DefaultWindow = 5

// NewStore creates a conversation store keeping the last window exchanges.
func NewStore(window int) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		window: window,
		turns:  make(map[string][]Turn),
	}
}

// Append records one turn for the user, evicting the oldest turns when the
// bound is exceeded.
func (s *Store) Append(userID string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := append(s.turns[userID], Turn{Role: role, Content: content})
	if max := s.window * 2; len(seq) > max {
		seq = seq[len(seq)-max:]
	}
	s.turns[userID] = seq
}

// History returns the user's turns in chronological order, oldest first. The
// returned slice is a copy; callers may not mutate stored state through it.
func (s *Store) History(userID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.turns[userID]
	out := make([]Turn, len(seq))
	copy(out, seq)
	return out
}

// Clear drops the user's entire history.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, userID)
}

// Len reports the number of stored turns for the user.
func (s *Store) Len(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns[userID])
}

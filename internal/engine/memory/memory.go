// internal/engine/memory/memory.go
package memory

import (
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxTurns is the number of exchanges kept when no limit is
// configured.
const DefaultMaxTurns = 10

// Turn is a single conversation message.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary describes the state of one conversation.
type Summary struct {
	TotalTurns         int        `json:"total_turns"`
	UserQueries        int        `json:"user_queries"`
	AssistantResponses int        `json:"assistant_responses"`
	ConversationStart  *time.Time `json:"conversation_start,omitempty"`
	LastInteraction    *time.Time `json:"last_interaction,omitempty"`
}

// Memory is a bounded conversation buffer. It keeps at most maxTurns
// exchanges, which is twice that many messages; the oldest messages
// are evicted first. Safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	turns    []Turn
	maxTurns int
}

func New(maxTurns int) *Memory {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Memory{maxTurns: maxTurns}
}

// AppendExchange records one user query and the assistant's answer.
func (m *Memory) AppendExchange(query, response string) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns,
		Turn{Role: RoleUser, Content: query, Timestamp: now},
		Turn{Role: RoleAssistant, Content: response, Timestamp: now},
	)
	if limit := m.maxTurns * 2; len(m.turns) > limit {
		m.turns = m.turns[len(m.turns)-limit:]
	}
}

// Restore replaces the buffer with a previously persisted transcript,
// re-applying the bound.
func (m *Memory) Restore(turns []Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append([]Turn(nil), turns...)
	if limit := m.maxTurns * 2; len(m.turns) > limit {
		m.turns = m.turns[len(m.turns)-limit:]
	}
}

// Turns returns a copy of all buffered messages, oldest first.
func (m *Memory) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Turn(nil), m.turns...)
}

// Recent returns a copy of the last n messages.
func (m *Memory) Recent(n int) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > len(m.turns) {
		n = len(m.turns)
	}
	return append([]Turn(nil), m.turns[len(m.turns)-n:]...)
}

// Len returns the number of buffered messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Clear drops the whole buffer.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

// Summarize reports the conversation statistics.
func (m *Memory) Summarize() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{TotalTurns: len(m.turns)}
	for _, t := range m.turns {
		switch t.Role {
		case RoleUser:
			s.UserQueries++
		case RoleAssistant:
			s.AssistantResponses++
		}
	}
	if len(m.turns) > 0 {
		first := m.turns[0].Timestamp
		last := m.turns[len(m.turns)-1].Timestamp
		s.ConversationStart = &first
		s.LastInteraction = &last
	}
	return s
}

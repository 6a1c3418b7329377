// internal/engine/memory/memory_test.go
package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AppendAndRead(t *testing.T) {
	m := New(10)

	m.AppendExchange("hello", "hi there")
	turns := m.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "hi there", turns[1].Content)
}

func TestMemory_EvictsOldestBeyondBound(t *testing.T) {
	m := New(3)

	for i := 0; i < 10; i++ {
		m.AppendExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := m.Turns()
	require.Len(t, turns, 6)
	assert.Equal(t, "q7", turns[0].Content)
	assert.Equal(t, "a9", turns[5].Content)
}

func TestMemory_DefaultBound(t *testing.T) {
	m := New(0)

	for i := 0; i < 25; i++ {
		m.AppendExchange("q", "a")
	}
	assert.Equal(t, DefaultMaxTurns*2, m.Len())
}

func TestMemory_Recent(t *testing.T) {
	m := New(10)
	m.AppendExchange("q1", "a1")
	m.AppendExchange("q2", "a2")

	recent := m.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "q2", recent[0].Content)
	assert.Equal(t, "a2", recent[1].Content)

	assert.Len(t, m.Recent(100), 4)
}

func TestMemory_Clear(t *testing.T) {
	m := New(10)
	m.AppendExchange("q", "a")
	m.Clear()
	assert.Zero(t, m.Len())
}

func TestMemory_Restore(t *testing.T) {
	m := New(2)

	var turns []Turn
	for i := 0; i < 6; i++ {
		turns = append(turns, Turn{Role: RoleUser, Content: fmt.Sprintf("t%d", i)})
	}
	m.Restore(turns)

	// The bound applies to restored transcripts too.
	got := m.Turns()
	require.Len(t, got, 4)
	assert.Equal(t, "t2", got[0].Content)
}

func TestMemory_Summarize(t *testing.T) {
	m := New(10)
	assert.Zero(t, m.Summarize().TotalTurns)
	assert.Nil(t, m.Summarize().ConversationStart)

	m.AppendExchange("q1", "a1")
	m.AppendExchange("q2", "a2")

	s := m.Summarize()
	assert.Equal(t, 4, s.TotalTurns)
	assert.Equal(t, 2, s.UserQueries)
	assert.Equal(t, 2, s.AssistantResponses)
	require.NotNil(t, s.ConversationStart)
	require.NotNil(t, s.LastInteraction)
	assert.False(t, s.LastInteraction.Before(*s.ConversationStart))
}

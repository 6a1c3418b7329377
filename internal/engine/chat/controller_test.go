// internal/engine/chat/controller_test.go
package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/intent"
	"segment-insights/internal/engine/records"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testEngine(t *testing.T) *analytics.Engine {
	t.Helper()

	table := &records.RawTable{
		Columns: []string{"customer_id", "recency", "frequency", "monetary", "segment"},
		Rows: []map[string]interface{}{
			{"customer_id": "A", "recency": 10.0, "frequency": 2.0, "monetary": 100.0, "segment": 0},
			{"customer_id": "B", "recency": 40.0, "frequency": 4.0, "monetary": 200.0, "segment": 0},
			{"customer_id": "C", "recency": 100.0, "frequency": 1.0, "monetary": 900.0, "segment": 1},
		},
	}
	set, err := records.NewPreparer(logger.NewTestLogger(t)).Prepare(table)
	require.NoError(t, err)
	return analytics.New(set)
}

func newTestController(t *testing.T, gen *fakeGenerator) *Controller {
	t.Helper()

	opts := Options{
		Engine:         testEngine(t),
		MaxMemoryTurns: 10,
		Logger:         logger.NewTestLogger(t),
	}
	if gen != nil {
		opts.Generator = gen
	}
	return NewController(opts)
}

func TestRespond_GeneratedAnswer(t *testing.T) {
	gen := &fakeGenerator{response: "Segment 1 drives most of the revenue."}
	c := newTestController(t, gen)

	result := c.Respond(context.Background(), "analyze segment 1")

	assert.Equal(t, intent.SegmentAnalysis, result.Intent)
	assert.Equal(t, []int{1}, result.Segments)
	assert.False(t, result.Fallback)
	// The intent marker is prepended during post-processing.
	assert.Equal(t, "📊 Segment 1 drives most of the revenue.", result.Response)

	// The prompt carried the grounding report.
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "CUSTOMER SEGMENTATION ANALYSIS REPORT")
	assert.Contains(t, gen.prompts[0], "DETAILED ANALYSIS FOR SEGMENT 1:")
}

func TestRespond_GenerationFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.NewGenerationFailedError(fmt.Errorf("boom"))}
	c := newTestController(t, gen)

	result := c.Respond(context.Background(), "analyze segment 0")

	assert.True(t, result.Fallback)
	assert.Contains(t, result.Response, "📊 **Segment 0 Analysis**")
}

func TestRespond_NoGeneratorFallsBack(t *testing.T) {
	c := newTestController(t, nil)

	result := c.Respond(context.Background(), "compare segment 0 and segment 1")

	assert.True(t, result.Fallback)
	assert.Contains(t, result.Response, "⚖️ **Segment Comparison: 0 vs 1**")
}

func TestRespond_FallbackCarriesIntentMarker(t *testing.T) {
	c := newTestController(t, nil)

	// A churn question with no named segment falls through to the
	// generic overview, which still gets the churn marker in front.
	result := c.Respond(context.Background(), "what is our churn risk")

	assert.Equal(t, intent.ChurnAnalysis, result.Intent)
	assert.True(t, result.Fallback)
	assert.True(t, strings.HasPrefix(result.Response, "⚠️ "))
	assert.Contains(t, result.Response, "Customer Segmentation Overview")
}

func TestRespond_UnknownSegmentsFiltered(t *testing.T) {
	c := newTestController(t, nil)

	result := c.Respond(context.Background(), "analyze segment 42")
	assert.Empty(t, result.Segments)
	assert.Contains(t, result.Response, "Customer Segmentation Overview")
}

func TestRespond_MemoryGrowsWithEachExchange(t *testing.T) {
	gen := &fakeGenerator{response: "Noted."}
	c := newTestController(t, gen)

	c.Respond(context.Background(), "what is our revenue")
	c.Respond(context.Background(), "and our churn risk?")

	assert.Equal(t, 4, c.ConversationSummary().TotalTurns)

	// The second prompt carries the first exchange.
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "Human: what is our revenue")
}

func TestRespond_NeverPanics(t *testing.T) {
	c := NewController(Options{Logger: logger.NewTestLogger(t)})

	queries := []string{"", "analyze segment 1", strings.Repeat("x", 10000), "compare 1 vs 2"}
	for _, q := range queries {
		assert.NotPanics(t, func() {
			result := c.Respond(context.Background(), q)
			assert.NotEmpty(t, result.Response)
		})
	}
}

func TestClearMemory(t *testing.T) {
	c := newTestController(t, &fakeGenerator{response: "ok"})

	c.Respond(context.Background(), "hello segments")
	require.NotZero(t, c.ConversationSummary().TotalTurns)

	require.NoError(t, c.ClearMemory(context.Background()))
	assert.Zero(t, c.ConversationSummary().TotalTurns)
}

func TestSystemStatus(t *testing.T) {
	c := newTestController(t, &fakeGenerator{response: "ok"})

	status := c.SystemStatus()
	assert.True(t, status.GeneratorReady)
	assert.True(t, status.DataConnected)
	assert.NotEmpty(t, status.SessionID)
	assert.Equal(t, intent.Supported(), status.SupportedIntents)

	bare := NewController(Options{Logger: logger.NewTestLogger(t)})
	status = bare.SystemStatus()
	assert.False(t, status.GeneratorReady)
	assert.False(t, status.DataConnected)
}

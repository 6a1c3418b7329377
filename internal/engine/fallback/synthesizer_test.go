// internal/engine/fallback/synthesizer_test.go
package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segment-insights/internal/common/logger"
	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/intent"
	"segment-insights/internal/engine/records"
)

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

func TestRespond_NoData(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Respond(intent.SegmentAnalysis, []int{0})
	assert.Contains(t, got, "don't have access to the customer data")
}

func TestRespond_SegmentAnalysis(t *testing.T) {
	s := NewSynthesizer(testEngine(t))

	got := s.Respond(intent.SegmentAnalysis, []int{0})
	assert.Contains(t, got, "📊 **Segment 0 Analysis**")
	assert.Contains(t, got, "Customer Count: 2")
	assert.Contains(t, got, "Total Revenue: $300.00")
	assert.Contains(t, got, "66.7% of your customer base")
}

func TestRespond_Comparison(t *testing.T) {
	s := NewSynthesizer(testEngine(t))

	got := s.Respond(intent.Comparison, []int{0, 1})
	assert.Contains(t, got, "⚖️ **Segment Comparison: 0 vs 1**")
	assert.Contains(t, got, "**Better Performing:** Segment 1")
}

func TestRespond_FallsThroughToOverview(t *testing.T) {
	s := NewSynthesizer(testEngine(t))

	tests := []struct {
		name     string
		intent   intent.Intent
		segments []int
	}{
		{"general intent", intent.General, nil},
		{"segment analysis without entities", intent.SegmentAnalysis, nil},
		{"segment analysis with unknown segment", intent.SegmentAnalysis, []int{42}},
		{"comparison with one entity", intent.Comparison, []int{0}},
		{"churn", intent.ChurnAnalysis, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Respond(tt.intent, tt.segments)
			assert.Contains(t, got, "📊 **Customer Segmentation Overview**")
			assert.Contains(t, got, "**Most Profitable Segment:** Segment 1")
		})
	}
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		intent   intent.Intent
		expected string
	}{
		{"adds emoji and period", "Revenue looks strong", intent.BusinessMetrics, "💰 Revenue looks strong."},
		{"keeps existing emoji", "📊 Analysis done.", intent.SegmentAnalysis, "📊 Analysis done."},
		{"keeps terminal question mark", "Want details?", intent.ChurnAnalysis, "⚠️ Want details?"},
		{"keeps exclamation", "Great quarter!", intent.Comparison, "⚖️ Great quarter!"},
		{"general intent untouched except punctuation", "Hello", intent.General, "Hello."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PostProcess(tt.input, tt.intent))
		})
	}
}

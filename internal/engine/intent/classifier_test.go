// internal/engine/intent/classifier_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Intent
	}{
		{"segment analysis", "give me a segment analysis please", SegmentAnalysis},
		{"which segment", "which segment performs best?", SegmentAnalysis},
		{"profitable segment", "what is the most profitable segment", SegmentAnalysis},
		{"compare", "compare segment 1 and segment 2", Comparison},
		{"versus", "cluster 1 versus cluster 2", Comparison},
		{"bare vs", "1 vs 2", Comparison},
		{"churn", "which customers are at risk of churn?", ChurnAnalysis},
		{"retention", "how is our retention looking", ChurnAnalysis},
		{"marketing", "suggest a marketing strategy for segment 2", MarketingStrategy},
		{"campaign", "what campaign should we run", MarketingStrategy},
		{"behavior", "describe customer behavior in group 3", CustomerBehavior},
		{"buying pattern", "what buying patterns do we see", CustomerBehavior},
		{"revenue", "what is our total revenue", BusinessMetrics},
		{"clv", "show me the CLV numbers", BusinessMetrics},
		{"case insensitive", "COMPARE SEGMENT 1 AND 2", Comparison},
		{"empty query", "", General},
		{"unrelated", "hello there", General},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.query))
		})
	}
}

// Earlier intents win when a query matches several categories.
func TestClassify_PriorityOrder(t *testing.T) {
	assert.Equal(t, SegmentAnalysis, Classify("which segment has the best retention"))
	assert.Equal(t, Comparison, Classify("revenue of 1 vs 2"))
}

func TestSupported(t *testing.T) {
	intents := Supported()
	assert.Equal(t, []Intent{
		SegmentAnalysis, Comparison, ChurnAnalysis,
		MarketingStrategy, CustomerBehavior, BusinessMetrics,
	}, intents)
}

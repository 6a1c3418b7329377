// internal/engine/fallback/synthesizer.go
package fallback

import (
	"fmt"
	"strings"

	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/intent"
)

const dataUnavailableMessage = "❌ I'm sorry, but I don't have access to the customer data right now. " +
	"Please ensure the data is loaded properly."

// Synthesizer produces deterministic, data-grounded answers when the
// language model is unavailable or fails. It never returns an error.
type Synthesizer struct {
	engine *analytics.Engine
}

func NewSynthesizer(engine *analytics.Engine) *Synthesizer {
	return &Synthesizer{engine: engine}
}

// Respond picks the best deterministic answer for the query: a segment
// summary, a pairwise comparison, or the general overview.
func (s *Synthesizer) Respond(it intent.Intent, segments []int) string {
	if s.engine == nil {
		return dataUnavailableMessage
	}

	if it == intent.SegmentAnalysis && len(segments) > 0 {
		if answer := s.segmentAnswer(segments[0]); answer != "" {
			return answer
		}
	}
	if it == intent.Comparison && len(segments) >= 2 {
		if answer := s.comparisonAnswer(segments[0], segments[1]); answer != "" {
			return answer
		}
	}
	return s.overviewAnswer()
}

func (s *Synthesizer) segmentAnswer(id int) string {
	summary, err := s.engine.Summary(id)
	if err != nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Segment %d Analysis**\n\n", id)
	b.WriteString("**Key Metrics:**\n")
	fmt.Fprintf(&b, "• Customer Count: %d\n", summary.CustomerCount)
	fmt.Fprintf(&b, "• Total Revenue: $%.2f\n", summary.TotalRevenue)
	fmt.Fprintf(&b, "• Average Monetary Value: $%.2f\n", summary.AvgMonetary)
	fmt.Fprintf(&b, "• Average Frequency: %.1f\n", summary.AvgFrequency)
	fmt.Fprintf(&b, "• Average Recency: %.0f days\n", summary.AvgRecency)
	fmt.Fprintf(&b, "\nThis segment represents %.1f%% of your customer base.", summary.Percentage)
	return b.String()
}

func (s *Synthesizer) comparisonAnswer(first, second int) string {
	cmp, err := s.engine.Compare(first, second)
	if err != nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⚖️ **Segment Comparison: %d vs %d**\n\n", first, second)
	fmt.Fprintf(&b, "**Revenue Difference:** $%.2f\n", cmp.RevenueDiff)
	fmt.Fprintf(&b, "**CLV Difference:** $%.2f\n", cmp.CLVDiff)
	fmt.Fprintf(&b, "**Better Performing:** Segment %d\n", cmp.BetterSegment)
	fmt.Fprintf(&b, "\nSegment %d shows superior performance in overall revenue generation.", cmp.BetterSegment)
	return b.String()
}

func (s *Synthesizer) overviewAnswer() string {
	best := s.engine.MostProfitable()

	var b strings.Builder
	b.WriteString("📊 **Customer Segmentation Overview**\n\n")
	b.WriteString("I can help you analyze your customer segments! Here's a quick overview:\n\n")
	fmt.Fprintf(&b, "**Most Profitable Segment:** Segment %d\n", best.SegmentID)
	fmt.Fprintf(&b, "• Revenue: $%.2f\n", best.TotalRevenue)
	fmt.Fprintf(&b, "• Customers: %d\n", best.CustomerCount)
	b.WriteString("\nAsk me about specific segments, comparisons, or marketing strategies!")
	return b.String()
}

// internal/engine/contextdoc/assembler.go
package contextdoc

import (
	"fmt"
	"strings"

	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/intent"
)

// Unavailable is returned when no dataset is connected.
const Unavailable = "Business data not available."

// Assembler builds the grounding document for the language model: the
// full analytical report plus an intent-specific focus section.
type Assembler struct {
	engine *analytics.Engine
}

func NewAssembler(engine *analytics.Engine) *Assembler {
	return &Assembler{engine: engine}
}

// Build renders the grounding context for one query. Focus sections
// that cannot be computed, for instance an unknown segment id, are
// silently skipped; the base report always survives.
func (a *Assembler) Build(it intent.Intent, segments []int) string {
	if a.engine == nil {
		return Unavailable
	}

	var b strings.Builder
	b.WriteString(a.engine.GroundingReport())

	switch {
	case it == intent.SegmentAnalysis && len(segments) > 0:
		for _, id := range segments {
			a.writeSegmentDetail(&b, id)
		}
	case it == intent.Comparison && len(segments) >= 2:
		a.writeComparison(&b, segments[0], segments[1])
	case it == intent.ChurnAnalysis:
		a.writeChurnDetail(&b)
	case it == intent.MarketingStrategy && len(segments) > 0:
		for _, id := range segments {
			a.writeRecommendations(&b, id)
		}
	}
	return b.String()
}

func (a *Assembler) writeSegmentDetail(b *strings.Builder, id int) {
	c, err := a.engine.Characteristics(id)
	if err != nil {
		return
	}

	fmt.Fprintf(b, "\n\nDETAILED ANALYSIS FOR SEGMENT %d:\n", id)
	fmt.Fprintf(b, "• Purchase Frequency Pattern: %s\n", c.PurchasePattern)
	fmt.Fprintf(b, "• Spending Pattern: %s\n", c.SpendingPattern)
	fmt.Fprintf(b, "• Engagement Level: %s\n", c.EngagementLevel)
	fmt.Fprintf(b, "• Revenue Contribution: %.1f%%\n", c.RevenueContribution)
	fmt.Fprintf(b, "• Customer Share: %.1f%%\n", c.CustomerShare)
	fmt.Fprintf(b, "• Average Order Value: $%.2f\n", c.AvgOrderValue)

	names := make([]string, 0, len(c.TopCustomers))
	for _, top := range c.TopCustomers {
		names = append(names, fmt.Sprintf("%s ($%.2f)", top.ID, top.Monetary))
	}
	fmt.Fprintf(b, "• Top Customers: %s\n", strings.Join(names, ", "))
}

func (a *Assembler) writeComparison(b *strings.Builder, first, second int) {
	cmp, err := a.engine.Compare(first, second)
	if err != nil {
		return
	}

	fmt.Fprintf(b, "\n\nSEGMENT COMPARISON (%d vs %d):\n", first, second)
	fmt.Fprintf(b, "• Revenue Difference: $%.2f\n", cmp.RevenueDiff)
	fmt.Fprintf(b, "• CLV Difference: $%.2f\n", cmp.CLVDiff)
	fmt.Fprintf(b, "• Customer Count Difference: %d\n", cmp.CustomerCountDiff)
	fmt.Fprintf(b, "• Better Performing Segment: %d\n", cmp.BetterSegment)
}

func (a *Assembler) writeChurnDetail(b *strings.Builder) {
	churn := a.engine.ChurnReport()

	b.WriteString("\n\nCHURN RISK DETAILED ANALYSIS:\n")
	fmt.Fprintf(b, "• Low Churn Risk Segments: %v\n", churn.LowChurnSegments)
	fmt.Fprintf(b, "• High Churn Risk Segments: %v\n", churn.HighChurnSegments)
	fmt.Fprintf(b, "• Overall Churn Distribution: %s\n", analytics.FormatRiskDistribution(churn.Overall))
}

func (a *Assembler) writeRecommendations(b *strings.Builder, id int) {
	recs, err := a.engine.Recommendations(id)
	if err != nil {
		return
	}

	fmt.Fprintf(b, "\n\nMARKETING RECOMMENDATIONS FOR SEGMENT %d:\n", id)
	for _, rec := range recs {
		fmt.Fprintf(b, "• %s\n", rec)
	}
}

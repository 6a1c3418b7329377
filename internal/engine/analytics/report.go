// internal/engine/analytics/report.go
package analytics

import (
	"fmt"
	"strings"

	"segment-insights/internal/models"
)

// Canonical rendering order for the bucket distributions.
var (
	tierOrder = []models.ValueTier{models.TierLow, models.TierMedium, models.TierHigh, models.TierPremium}
	riskOrder = []models.ChurnRisk{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical}
)

// GroundingReport renders the full analytical state as plain text. It
// is the grounding context handed to the language model, so every
// number in it comes straight from the prepared dataset.
func (e *Engine) GroundingReport() string {
	churn := e.ChurnReport()
	mostProfitable := e.MostProfitable()
	highestCLV := e.HighestCLV()

	var b strings.Builder
	b.WriteString("\nCUSTOMER SEGMENTATION ANALYSIS REPORT\n")
	b.WriteString("=====================================\n\n")

	b.WriteString("OVERALL BUSINESS METRICS:\n")
	fmt.Fprintf(&b, "• Total Customers: %s\n", formatCount(e.TotalCustomers()))
	fmt.Fprintf(&b, "• Total Revenue: $%s\n", formatMoney(e.totalRevenue))
	fmt.Fprintf(&b, "• Average Customer Lifetime Value: $%.2f\n", e.avgCLV)
	fmt.Fprintf(&b, "• Number of Segments: %d\n", len(e.segments))

	b.WriteString("\nSEGMENT PERFORMANCE SUMMARY:\n")
	for _, id := range e.segments {
		s := e.summaries[id]
		fmt.Fprintf(&b, "\nSEGMENT %d:\n", id)
		fmt.Fprintf(&b, "• Customer Count: %s (%.1f%% of total)\n", formatCount(s.CustomerCount), s.Percentage)
		fmt.Fprintf(&b, "• Total Revenue: $%s\n", formatMoney(s.TotalRevenue))
		fmt.Fprintf(&b, "• Average Monetary Value: $%.2f\n", s.AvgMonetary)
		fmt.Fprintf(&b, "• Average Frequency: %.1f purchases\n", s.AvgFrequency)
		fmt.Fprintf(&b, "• Average Recency: %.0f days\n", s.AvgRecency)
		fmt.Fprintf(&b, "• Average CLV: $%.2f\n", s.AvgCLV)
		fmt.Fprintf(&b, "• RFM Score: %.1f/100\n", s.AvgRFMScore)
		fmt.Fprintf(&b, "• Churn Risk Distribution: %s\n", FormatRiskDistribution(s.ChurnRisks))
		fmt.Fprintf(&b, "• Value Tier Distribution: %s\n", formatTiers(s.ValueTiers))
	}

	b.WriteString("\nKEY INSIGHTS:\n")
	fmt.Fprintf(&b, "• Most Profitable Segment: Segment %d ($%s revenue)\n",
		mostProfitable.SegmentID, formatMoney(mostProfitable.TotalRevenue))
	fmt.Fprintf(&b, "• Highest CLV Segment: Segment %d ($%.2f average CLV)\n",
		highestCLV.SegmentID, highestCLV.AvgCLV)
	fmt.Fprintf(&b, "• Low Churn Risk Segments: %v\n", churn.LowChurnSegments)
	fmt.Fprintf(&b, "• High Churn Risk Segments: %v\n", churn.HighChurnSegments)

	b.WriteString("\nCHURN RISK ANALYSIS:\n")
	fmt.Fprintf(&b, "%s\n", FormatRiskDistribution(churn.Overall))

	return b.String()
}

// FormatRiskDistribution renders a churn risk count map in canonical
// bucket order.
func FormatRiskDistribution(counts map[models.ChurnRisk]int) string {
	parts := make([]string, 0, len(counts))
	for _, risk := range riskOrder {
		if n, ok := counts[risk]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d", risk, n))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatTiers(counts map[models.ValueTier]int) string {
	parts := make([]string, 0, len(counts))
	for _, tier := range tierOrder {
		if n, ok := counts[tier]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d", tier, n))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatCount renders an integer with thousands separators.
func formatCount(n int) string {
	return groupDigits(fmt.Sprintf("%d", n))
}

// formatMoney renders an amount with thousands separators and cents.
func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	return groupDigits(s[:dot]) + s[dot:]
}

func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

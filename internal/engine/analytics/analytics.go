// internal/engine/analytics/analytics.go
package analytics

import (
	"sort"

	"github.com/montanaflynn/stats"

	"segment-insights/internal/common/errors"
	"segment-insights/internal/engine/records"
	"segment-insights/internal/models"
)

// Churn list thresholds, in percent of a segment's customers.
const (
	lowChurnThreshold  = 50.0
	highChurnThreshold = 30.0
)

const topCustomerCount = 5

// Engine answers deterministic analytical questions about a prepared
// dataset. The dataset is immutable, so every aggregate is computed
// once at construction.
type Engine struct {
	set       *records.PreparedSet
	summaries map[int]models.SegmentSummary
	segments  []int

	totalRevenue float64
	avgCLV       float64
}

func New(set *records.PreparedSet) *Engine {
	e := &Engine{
		set:       set,
		summaries: make(map[int]models.SegmentSummary),
		segments:  set.Segments(),
	}

	var clvSum float64
	for _, rec := range set.Records {
		e.totalRevenue += rec.Monetary
		clvSum += rec.CLV
	}
	if len(set.Records) > 0 {
		e.avgCLV = clvSum / float64(len(set.Records))
	}

	for _, id := range e.segments {
		e.summaries[id] = e.summarize(id)
	}
	return e
}

// Segments returns the known segment ids in ascending order.
func (e *Engine) Segments() []int {
	return e.segments
}

func (e *Engine) HasSegment(id int) bool {
	_, ok := e.summaries[id]
	return ok
}

func (e *Engine) TotalCustomers() int {
	return len(e.set.Records)
}

func (e *Engine) TotalRevenue() float64 {
	return e.totalRevenue
}

func (e *Engine) AvgCLV() float64 {
	return e.avgCLV
}

// Summaries returns the per-segment summaries keyed by segment id.
func (e *Engine) Summaries() map[int]models.SegmentSummary {
	return e.summaries
}

// Summary returns the summary of one segment.
func (e *Engine) Summary(id int) (models.SegmentSummary, error) {
	s, ok := e.summaries[id]
	if !ok {
		return models.SegmentSummary{}, errors.NewSegmentNotFoundError(id)
	}
	return s, nil
}

func (e *Engine) summarize(id int) models.SegmentSummary {
	recs := e.set.SegmentRecords(id)
	s := models.SegmentSummary{
		SegmentID:     id,
		CustomerCount: len(recs),
		Percentage:    float64(len(recs)) / float64(len(e.set.Records)) * 100,
		ValueTiers:    make(map[models.ValueTier]int),
		ChurnRisks:    make(map[models.ChurnRisk]int),
	}

	monetary := make([]float64, 0, len(recs))
	for _, rec := range recs {
		s.AvgRecency += rec.Recency
		s.AvgFrequency += rec.Frequency
		s.TotalRevenue += rec.Monetary
		s.AvgCLV += rec.CLV
		s.AvgRFMScore += rec.RFMScore
		s.ValueTiers[rec.ValueTier]++
		s.ChurnRisks[rec.ChurnRisk]++
		monetary = append(monetary, rec.Monetary)
	}

	n := float64(len(recs))
	s.AvgRecency /= n
	s.AvgFrequency /= n
	s.AvgCLV /= n
	s.AvgRFMScore /= n
	s.AvgMonetary = s.TotalRevenue / n

	s.MedianMonetary, _ = stats.Median(monetary)
	s.MinMonetary, _ = stats.Min(monetary)
	s.MaxMonetary, _ = stats.Max(monetary)
	if len(monetary) > 1 {
		s.StdMonetary, _ = stats.StandardDeviationSample(monetary)
	}
	return s
}

// MostProfitable returns the segment with the highest total revenue.
// Ties resolve to the lowest segment id.
func (e *Engine) MostProfitable() models.SegmentSummary {
	return e.bestBy(func(s models.SegmentSummary) float64 { return s.TotalRevenue })
}

// HighestCLV returns the segment with the highest average customer
// lifetime value. Ties resolve to the lowest segment id.
func (e *Engine) HighestCLV() models.SegmentSummary {
	return e.bestBy(func(s models.SegmentSummary) float64 { return s.AvgCLV })
}

func (e *Engine) bestBy(metric func(models.SegmentSummary) float64) models.SegmentSummary {
	best := e.summaries[e.segments[0]]
	for _, id := range e.segments[1:] {
		if metric(e.summaries[id]) > metric(best) {
			best = e.summaries[id]
		}
	}
	return best
}

// Compare computes pairwise metric deltas between two segments. The
// better segment is decided on total revenue alone; on an exact tie
// the second segment wins.
func (e *Engine) Compare(first, second int) (*models.ComparisonResult, error) {
	s1, err := e.Summary(first)
	if err != nil {
		return nil, err
	}
	s2, err := e.Summary(second)
	if err != nil {
		return nil, err
	}

	result := &models.ComparisonResult{
		FirstID:           first,
		SecondID:          second,
		CustomerCountDiff: s1.CustomerCount - s2.CustomerCount,
		RevenueDiff:       s1.TotalRevenue - s2.TotalRevenue,
		CLVDiff:           s1.AvgCLV - s2.AvgCLV,
		RecencyDiff:       s1.AvgRecency - s2.AvgRecency,
		FrequencyDiff:     s1.AvgFrequency - s2.AvgFrequency,
		MonetaryDiff:      s1.AvgMonetary - s2.AvgMonetary,
		RFMScoreDiff:      s1.AvgRFMScore - s2.AvgRFMScore,
		BetterSegment:     second,
		First:             s1,
		Second:            s2,
	}
	if s1.TotalRevenue > s2.TotalRevenue {
		result.BetterSegment = first
	}
	return result, nil
}

// ChurnReport breaks churn risk down per segment and flags segments
// with notably low or high churn exposure.
func (e *Engine) ChurnReport() *models.ChurnReport {
	report := &models.ChurnReport{
		RiskCounts:      make(map[int]map[models.ChurnRisk]int),
		RiskPercentages: make(map[int]map[models.ChurnRisk]float64),
		Overall:         make(map[models.ChurnRisk]int),
	}

	for _, rec := range e.set.Records {
		report.Overall[rec.ChurnRisk]++
	}

	for _, id := range e.segments {
		counts := e.summaries[id].ChurnRisks
		total := float64(e.summaries[id].CustomerCount)

		report.RiskCounts[id] = counts
		percentages := make(map[models.ChurnRisk]float64, len(counts))
		for risk, count := range counts {
			percentages[risk] = float64(count) / total * 100
		}
		report.RiskPercentages[id] = percentages

		if percentages[models.RiskLow] > lowChurnThreshold {
			report.LowChurnSegments = append(report.LowChurnSegments, id)
		}
		if percentages[models.RiskCritical] > highChurnThreshold {
			report.HighChurnSegments = append(report.HighChurnSegments, id)
		}
	}
	return report
}

// Recommendations builds the marketing action list for one segment.
// The base ladder keys off the average RFM score, then recency,
// frequency and monetary rules append extra actions.
func (e *Engine) Recommendations(id int) ([]string, error) {
	s, err := e.Summary(id)
	if err != nil {
		return nil, err
	}

	var recs []string
	switch {
	case s.AvgRFMScore > 75:
		recs = append(recs,
			"🌟 VIP Treatment: Offer exclusive premium services and early access to new products",
			"💎 Loyalty Rewards: Implement high-tier loyalty program with personalized benefits",
			"🎯 Upselling: Focus on premium product recommendations and bundle offers",
		)
	case s.AvgRFMScore > 50:
		recs = append(recs,
			"📈 Growth Strategy: Encourage increased purchase frequency with targeted promotions",
			"🔄 Cross-selling: Introduce complementary products based on purchase history",
			"💌 Personalized Communication: Send tailored offers based on preferences",
		)
	default:
		recs = append(recs,
			"🎁 Win-back Campaigns: Offer attractive discounts to re-engage customers",
			"📧 Re-engagement: Implement email marketing campaigns with special offers",
			"🆕 Product Discovery: Introduce new products at competitive prices",
		)
	}

	if s.AvgRecency > 90 {
		recs = append(recs, "⏰ Urgency Campaigns: Create time-limited offers to encourage immediate action")
	}
	if s.AvgFrequency < 2 {
		recs = append(recs, "🔄 Frequency Building: Implement subscription models or repeat purchase incentives")
	}
	if s.AvgMonetary < 100 {
		recs = append(recs, "💰 Value Perception: Focus on budget-friendly options and value propositions")
	}
	return recs, nil
}

// Characteristics profiles one segment: its summary, top spenders and
// coarse behavioral labels.
func (e *Engine) Characteristics(id int) (*models.SegmentCharacteristics, error) {
	s, err := e.Summary(id)
	if err != nil {
		return nil, err
	}

	recs := append([]models.CustomerRecord(nil), e.set.SegmentRecords(id)...)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Monetary > recs[j].Monetary })
	if len(recs) > topCustomerCount {
		recs = recs[:topCustomerCount]
	}
	top := make([]models.TopCustomer, 0, len(recs))
	for _, rec := range recs {
		top = append(top, models.TopCustomer{
			ID:        rec.ID,
			Monetary:  rec.Monetary,
			Frequency: rec.Frequency,
			Recency:   rec.Recency,
		})
	}

	c := &models.SegmentCharacteristics{
		Summary:         s,
		TopCustomers:    top,
		PurchasePattern: gradeDesc(s.AvgFrequency, 5, 2, "High", "Medium", "Low"),
		SpendingPattern: gradeDesc(s.AvgMonetary, 500, 200, "High", "Medium", "Low"),
		EngagementLevel: gradeAsc(s.AvgRecency, 60, 120, "Active", "Moderate", "Inactive"),
		CustomerShare:   s.Percentage,
	}
	if e.totalRevenue > 0 {
		c.RevenueContribution = s.TotalRevenue / e.totalRevenue * 100
	}
	if s.AvgFrequency > 0 {
		c.AvgOrderValue = s.AvgMonetary / s.AvgFrequency
	}
	return c, nil
}

// gradeDesc labels v where higher is better: above hi, above lo, rest.
func gradeDesc(v, hi, lo float64, top, mid, bottom string) string {
	switch {
	case v > hi:
		return top
	case v > lo:
		return mid
	default:
		return bottom
	}
}

// gradeAsc labels v where lower is better: below lo, below hi, rest.
func gradeAsc(v, lo, hi float64, top, mid, bottom string) string {
	switch {
	case v < lo:
		return top
	case v < hi:
		return mid
	default:
		return bottom
	}
}

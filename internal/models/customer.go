// internal/models/customer.go
package models

// ValueTier buckets a customer's composite RFM score.
type ValueTier string

const (
	TierLow     ValueTier = "Low"
	TierMedium  ValueTier = "Medium"
	TierHigh    ValueTier = "High"
	TierPremium ValueTier = "Premium"
)

// ChurnRisk buckets a customer's recency in days.
type ChurnRisk string

const (
	RiskLow      ChurnRisk = "Low"
	RiskMedium   ChurnRisk = "Medium"
	RiskHigh     ChurnRisk = "High"
	RiskCritical ChurnRisk = "Critical"
)

// CustomerRecord is one prepared customer row with its derived metrics.
type CustomerRecord struct {
	ID        string  `json:"customer_id"`
	Recency   float64 `json:"recency"`
	Frequency float64 `json:"frequency"`
	Monetary  float64 `json:"monetary"`
	Segment   int     `json:"segment"`

	CLV            float64   `json:"clv"`
	RecencyScore   float64   `json:"recency_score"`
	FrequencyScore float64   `json:"frequency_score"`
	MonetaryScore  float64   `json:"monetary_score"`
	RFMScore       float64   `json:"rfm_score"`
	ValueTier      ValueTier `json:"value_tier"`
	ChurnRisk      ChurnRisk `json:"churn_risk"`
}

// SegmentSummary aggregates the prepared records of a single segment.
type SegmentSummary struct {
	SegmentID     int     `json:"segment_id"`
	CustomerCount int     `json:"customer_count"`
	Percentage    float64 `json:"percentage"`

	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgCLV       float64 `json:"avg_clv"`
	AvgRFMScore  float64 `json:"avg_rfm_score"`

	MedianMonetary float64 `json:"median_monetary"`
	StdMonetary    float64 `json:"std_monetary"`
	MinMonetary    float64 `json:"min_monetary"`
	MaxMonetary    float64 `json:"max_monetary"`

	ValueTiers map[ValueTier]int `json:"value_tiers"`
	ChurnRisks map[ChurnRisk]int `json:"churn_risks"`
}

// ComparisonResult holds the pairwise metric deltas between two segments.
// Deltas are always first minus second.
type ComparisonResult struct {
	FirstID  int `json:"first_segment_id"`
	SecondID int `json:"second_segment_id"`

	CustomerCountDiff int     `json:"customer_count_diff"`
	RevenueDiff       float64 `json:"revenue_diff"`
	CLVDiff           float64 `json:"clv_diff"`
	RecencyDiff       float64 `json:"recency_diff"`
	FrequencyDiff     float64 `json:"frequency_diff"`
	MonetaryDiff      float64 `json:"monetary_diff"`
	RFMScoreDiff      float64 `json:"rfm_score_diff"`

	// BetterSegment is decided on total revenue alone.
	BetterSegment int `json:"better_segment"`

	First  SegmentSummary `json:"first"`
	Second SegmentSummary `json:"second"`
}

// ChurnReport is the dataset-wide churn risk breakdown.
type ChurnReport struct {
	RiskCounts      map[int]map[ChurnRisk]int     `json:"risk_counts"`
	RiskPercentages map[int]map[ChurnRisk]float64 `json:"risk_percentages"`
	Overall         map[ChurnRisk]int             `json:"overall"`

	// LowChurnSegments have more than half their customers at Low risk.
	// HighChurnSegments have more than 30% at Critical risk.
	LowChurnSegments  []int `json:"low_churn_segments"`
	HighChurnSegments []int `json:"high_churn_segments"`
}

// TopCustomer is one of the highest-spending customers of a segment.
type TopCustomer struct {
	ID        string  `json:"customer_id"`
	Monetary  float64 `json:"monetary"`
	Frequency float64 `json:"frequency"`
	Recency   float64 `json:"recency"`
}

// SegmentCharacteristics is the behavioral profile of a single segment.
type SegmentCharacteristics struct {
	Summary      SegmentSummary `json:"summary"`
	TopCustomers []TopCustomer  `json:"top_customers"`

	PurchasePattern string `json:"purchase_pattern"`
	SpendingPattern string `json:"spending_pattern"`
	EngagementLevel string `json:"engagement_level"`

	RevenueContribution float64 `json:"revenue_contribution"`
	CustomerShare       float64 `json:"customer_share"`
	AvgOrderValue       float64 `json:"avg_order_value"`
}

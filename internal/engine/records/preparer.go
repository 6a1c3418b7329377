// internal/engine/records/preparer.go
package records

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/common/metrics"
	"segment-insights/internal/models"
)

// RFM component weights. Monetary carries the most signal.
const (
	recencyWeight   = 0.3
	frequencyWeight = 0.3
	monetaryWeight  = 0.4
)

// Score and recency bin boundaries, lower bound inclusive.
var (
	tierBounds = []float64{25, 50, 75}
	tierLabels = []models.ValueTier{models.TierLow, models.TierMedium, models.TierHigh, models.TierPremium}

	riskBounds = []float64{30, 90, 180}
	riskLabels = []models.ChurnRisk{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical}
)

// Preparer turns raw customer tables into validated, metric-enriched
// datasets. Rows that fail coercion or schema validation are dropped
// and counted, never fatal.
type Preparer struct {
	logger logger.Logger
}

func NewPreparer(log logger.Logger) *Preparer {
	return &Preparer{logger: log}
}

// Prepare validates the raw table, drops bad rows, computes the derived
// metrics and returns the prepared dataset.
func (p *Preparer) Prepare(table *RawTable) (*PreparedSet, error) {
	if missing := missingColumns(table.Columns); len(missing) > 0 {
		p.logger.Error("raw table is missing required columns", map[string]interface{}{
			"missing": missing,
		})
		return nil, errors.NewSchemaValidationFailedError(fmt.Sprintf("missing required columns: %v", missing))
	}

	set := &PreparedSet{bySegment: make(map[int][]models.CustomerRecord)}
	for i, row := range table.Rows {
		rec, reason := coerceRow(row)
		if reason == "" {
			coerced := map[string]interface{}{
				"customer_id": rec.ID,
				"recency":     rec.Recency,
				"frequency":   rec.Frequency,
				"monetary":    rec.Monetary,
				"segment":     rec.Segment,
			}
			if ok, why := validateRow(coerced); !ok {
				reason = why
			}
		}
		if reason != "" {
			set.Rejected++
			metrics.RecordsRejectedTotal.Inc()
			p.logger.Debug("dropping invalid customer row", map[string]interface{}{
				"row":    i,
				"reason": reason,
			})
			continue
		}
		set.Records = append(set.Records, rec)
	}
	set.Accepted = len(set.Records)

	if set.Accepted == 0 {
		return nil, errors.NewEmptyDatasetError(set.Rejected)
	}

	p.computeMetrics(set)

	for _, rec := range set.Records {
		set.bySegment[rec.Segment] = append(set.bySegment[rec.Segment], rec)
	}
	for id := range set.bySegment {
		set.segments = append(set.segments, id)
	}
	sort.Ints(set.segments)

	p.logger.Info("prepared customer dataset", map[string]interface{}{
		"accepted": set.Accepted,
		"rejected": set.Rejected,
		"segments": len(set.segments),
	})
	return set, nil
}

// computeMetrics fills in the derived per-customer metrics. Scores are
// normalized against the dataset maxima; an all-zero column yields a
// zero score rather than a division by zero.
func (p *Preparer) computeMetrics(set *PreparedSet) {
	var maxRecency, maxFrequency, maxMonetary float64
	for _, rec := range set.Records {
		if rec.Recency > maxRecency {
			maxRecency = rec.Recency
		}
		if rec.Frequency > maxFrequency {
			maxFrequency = rec.Frequency
		}
		if rec.Monetary > maxMonetary {
			maxMonetary = rec.Monetary
		}
	}

	for i := range set.Records {
		rec := &set.Records[i]
		rec.CLV = rec.Frequency * rec.Monetary

		if maxRecency > 0 {
			rec.RecencyScore = (maxRecency - rec.Recency) / maxRecency * 100
		}
		if maxFrequency > 0 {
			rec.FrequencyScore = rec.Frequency / maxFrequency * 100
		}
		if maxMonetary > 0 {
			rec.MonetaryScore = rec.Monetary / maxMonetary * 100
		}
		rec.RFMScore = recencyWeight*rec.RecencyScore +
			frequencyWeight*rec.FrequencyScore +
			monetaryWeight*rec.MonetaryScore

		rec.ValueTier = tierLabels[binIndex(rec.RFMScore, tierBounds)]
		rec.ChurnRisk = riskLabels[binIndex(rec.Recency, riskBounds)]
	}
}

// binIndex returns the bucket of v given ascending lower-exclusive
// upper bounds. A value equal to a bound lands in the higher bucket.
func binIndex(v float64, bounds []float64) int {
	for i, b := range bounds {
		if v < b {
			return i
		}
	}
	return len(bounds)
}

func missingColumns(columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// coerceRow converts one raw row into a typed record. The returned
// reason is empty on success.
func coerceRow(row map[string]interface{}) (models.CustomerRecord, string) {
	var rec models.CustomerRecord

	id, err := cast.ToStringE(row["customer_id"])
	if err != nil || id == "" {
		return rec, "customer_id is not a usable string"
	}
	recency, err := cast.ToFloat64E(row["recency"])
	if err != nil {
		return rec, fmt.Sprintf("recency: %v", err)
	}
	frequency, err := cast.ToFloat64E(row["frequency"])
	if err != nil {
		return rec, fmt.Sprintf("frequency: %v", err)
	}
	monetary, err := cast.ToFloat64E(row["monetary"])
	if err != nil {
		return rec, fmt.Sprintf("monetary: %v", err)
	}
	segment, err := cast.ToIntE(row["segment"])
	if err != nil {
		return rec, fmt.Sprintf("segment: %v", err)
	}

	rec.ID = id
	rec.Recency = recency
	rec.Frequency = frequency
	rec.Monetary = monetary
	rec.Segment = segment
	return rec, ""
}

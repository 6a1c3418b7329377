// internal/engine/records/models.go
package records

import (
	"context"

	"segment-insights/internal/models"
)

// RequiredColumns are the fields every raw customer row must carry.
var RequiredColumns = []string{"customer_id", "recency", "frequency", "monetary", "segment"}

// RawTable is an untyped customer table as delivered by a Source.
type RawTable struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// Source fetches a raw customer table from a backing store.
type Source interface {
	Fetch(ctx context.Context) (*RawTable, error)
	Name() string
}

// PreparedSet is the validated, metric-enriched dataset the analytics
// layer operates on. Records keep the order of the raw input.
type PreparedSet struct {
	Records  []models.CustomerRecord
	Accepted int
	Rejected int

	bySegment map[int][]models.CustomerRecord
	segments  []int
}

// Segments returns the distinct segment ids in ascending order.
func (s *PreparedSet) Segments() []int {
	return s.segments
}

// SegmentRecords returns the records of one segment, or nil when the
// segment does not exist.
func (s *PreparedSet) SegmentRecords(id int) []models.CustomerRecord {
	return s.bySegment[id]
}

// HasSegment reports whether the segment id exists in the dataset.
func (s *PreparedSet) HasSegment(id int) bool {
	_, ok := s.bySegment[id]
	return ok
}

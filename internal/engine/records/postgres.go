// internal/engine/records/postgres.go
package records

import (
	"context"
	"database/sql"
	"fmt"

	"segment-insights/internal/common/errors"
)

// PostgresSource reads the customer table from a PostgreSQL relation
// carrying the canonical column set.
type PostgresSource struct {
	db    *sql.DB
	table string
}

func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) Fetch(ctx context.Context) (*RawTable, error) {
	query := fmt.Sprintf(
		"SELECT customer_id, recency, frequency, monetary, segment FROM %s ORDER BY customer_id",
		s.table,
	)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewRecordSourceFailedError(s.Name(), err)
	}
	defer rows.Close()

	table := &RawTable{Columns: append([]string(nil), RequiredColumns...)}
	for rows.Next() {
		var (
			id                           string
			recency, frequency, monetary float64
			segment                      int
		)
		if err := rows.Scan(&id, &recency, &frequency, &monetary, &segment); err != nil {
			return nil, errors.NewRecordSourceFailedError(s.Name(), err)
		}
		table.Rows = append(table.Rows, map[string]interface{}{
			"customer_id": id,
			"recency":     recency,
			"frequency":   frequency,
			"monetary":    monetary,
			"segment":     segment,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewRecordSourceFailedError(s.Name(), err)
	}
	return table, nil
}

// internal/engine/records/csv.go
package records

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"segment-insights/internal/common/errors"
)

// CSVSource reads a customer table from a headered CSV file.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.Path
}

// Fetch loads the file into a raw table. Cell values stay strings;
// the preparer owns coercion.
func (s *CSVSource) Fetch(ctx context.Context) (*RawTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.NewRecordSourceFailedError(s.Name(), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewRecordSourceFailedError(s.Name(), err)
	}

	table := &RawTable{Columns: header}
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewRecordSourceFailedError(s.Name(), err)
		}
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewRecordSourceFailedError(s.Name(), err)
		}

		row := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const bom = "\ufeff"

// ReadCSV reads a comma separated ledger export.
//
// The first record is the header. Columns with a blank name are ignored, and
// when a name appears twice only the first column is kept. Records may have
// fewer or more fields than the header.
func ReadCSV(r io.Reader) (header []string, rows []Row, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("failed to read csv: missing header")
	}

	// index of the columns to keep
	var index []int
	seen := make(map[string]bool)
	for i, name := range records[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, bom)
		}
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		header = append(header, name)
		index = append(index, i)
	}

	rows = make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for j, i := range index {
			if i < len(record) {
				row[header[j]] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

package assets

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// SampleRows parses a stored CSV dataset and returns up to limit feature
// rows for prediction calls. The last column is assumed to be the target
// and is dropped; a non-numeric first record is treated as a header.
func (s *Store) SampleRows(partition, name string, limit int) ([][]float64, error) {
	data, err := s.Get(partition, name)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}

	start := 0
	if !numericRecord(records[0]) {
		start = 1
	}

	var rows [][]float64
	for _, rec := range records[start:] {
		if len(rows) == limit {
			break
		}
		if len(rec) < 2 {
			continue
		}
		row := make([]float64, 0, len(rec)-1)
		ok := true
		for _, field := range rec[:len(rec)-1] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			row = append(row, v)
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no numeric feature rows", name)
	}
	return rows, nil
}

func numericRecord(rec []string) bool {
	for _, field := range rec {
		if _, err := strconv.ParseFloat(field, 64); err != nil {
			return false
		}
	}
	return len(rec) > 0
}

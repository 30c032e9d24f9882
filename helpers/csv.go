package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ============================================================================
// CSV HELPER — Parses CSV data into generic rows
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, Sheets). This
// helper converts the raw bytes into []map[string]any rows plus the column
// order, which feeds straight into fields.Infer.
// ============================================================================

// ParseCSV parses CSV bytes into generic rows. Values that parse as numbers
// become float64; everything else stays a string. Empty cells become nil.
// Malformed rows are skipped. The returned columns preserve header order.
func ParseCSV(data []byte) ([]map[string]any, []string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []map[string]any
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			if i >= len(row) {
				rec[col] = nil
				continue
			}
			rec[col] = coerce(strings.TrimSpace(row[i]))
		}
		rows = append(rows, rec)
	}

	return rows, columns, nil
}

// coerce tries numeric first, then falls back to the raw string.
func coerce(val string) any {
	if val == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}

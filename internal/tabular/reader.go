// Package tabular turns uploaded CSV bytes into an in-memory core.Batch.
//
// It handles the messy reality of exported files: invalid UTF-8 sequences,
// Windows BOMs, Excel formula prefixes (="value"), ragged rows, and blank
// lines. The core pipeline never touches file bytes; this package is the
// tabular-reader collaborator it consumes.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"insighthub/internal/core"
)

// ReadCSV parses CSV bytes into a batch, preserving column names and row
// order. The first non-empty record is the header; header names are cleaned
// and lowercased. Empty cells become null values; cells missing from short
// rows are absent from that row entirely. Fully blank rows are skipped.
func ReadCSV(data []byte) (core.Batch, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return core.Batch{}, fmt.Errorf("parse csv: %w", err)
	}

	headerIdx := -1
	for i, rec := range records {
		if !isEmptyRow(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return core.Batch{}, fmt.Errorf("empty file")
	}

	columns := make([]string, 0, len(records[headerIdx]))
	for _, h := range records[headerIdx] {
		columns = append(columns, strings.ToLower(cleanCell(h)))
	}

	batch := core.Batch{Columns: columns}
	for _, rec := range records[headerIdx+1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := make(core.Row, len(columns))
		for i, col := range columns {
			if i >= len(rec) {
				continue // short row: column absent
			}
			raw := cleanCell(rec[i])
			if raw == "" {
				row[col] = core.Null()
			} else {
				row[col] = core.Str(raw)
			}
		}
		batch.Rows = append(batch.Rows, row)
	}

	return batch, nil
}

// cleanCell removes common CSV artifacts from a cell value: surrounding
// whitespace, the Excel formula prefix (="..."), stray quotes, and a BOM.
func cleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the Unicode
// replacement character so downstream string handling is safe.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\ufffd')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

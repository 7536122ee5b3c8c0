package core

// validate.go implements the rule engine that inspects a raw batch before
// ingestion. Four checks run in a fixed order:
//
//  1. Required columns: created_at and text must exist.
//  2. Data types: every created_at cell must parse as a timestamp; a text
//     column that looks numeric draws a warning.
//  3. Missing values: null entries in required columns are errors.
//  4. Data quality: short text, empty text, future dates, pre-cutoff dates.
//
// A missing required column does not stop the later checks from running;
// checks that would reference the missing column simply skip it. The
// future/old date checks only consider cells the type check could parse, so
// an unparseable cell is reported exactly once.

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationReport is the outcome of validating one batch. Warnings never
// block downstream processing; any error halts the pipeline before
// transformation.
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// IsValid reports whether the batch may proceed to transformation.
func (r ValidationReport) IsValid() bool {
	return len(r.Errors) == 0
}

// Render formats the report for display: an ERRORS section if any errors,
// then a WARNINGS section if any warnings, else a single all-clear line.
func (r ValidationReport) Render() string {
	var b strings.Builder

	if len(r.Errors) > 0 {
		b.WriteString("ERRORS:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	if len(r.Warnings) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("WARNINGS:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	if b.Len() == 0 {
		return "All validation checks passed."
	}
	return strings.TrimRight(b.String(), "\n")
}

// Validator inspects raw batches. The zero value is not usable; construct
// with NewValidator and override fields as needed.
type Validator struct {
	// Now supplies the current time for the future-date check.
	Now func() time.Time

	// MinTextLength is the threshold below which ticket text draws a
	// short-text warning.
	MinTextLength int

	// EarliestDate is the cutoff below which ticket dates draw an
	// older-than-expected warning.
	EarliestDate time.Time
}

// NewValidator returns a Validator with production defaults: short-text
// threshold of 10 characters and a 2020-01-01 plausibility cutoff.
func NewValidator() *Validator {
	return &Validator{
		Now:           time.Now,
		MinTextLength: 10,
		EarliestDate:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Validate runs all checks over the batch and returns the combined report.
// The call is stateless; a Validator may be shared across goroutines.
func (v *Validator) Validate(b Batch) ValidationReport {
	var r ValidationReport

	v.checkRequiredColumns(b, &r)
	parsed := v.checkDataTypes(b, &r)
	v.checkMissingValues(b, &r)
	v.checkDataQuality(b, parsed, &r)

	return r
}

func (v *Validator) checkRequiredColumns(b Batch, r *ValidationReport) {
	var missing []string
	for _, col := range RequiredColumns {
		if !b.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}
}

// checkDataTypes validates created_at parseability and text column typing.
// It returns the parsed timestamps (nil entries for cells that were null or
// unparseable) so the data-quality check only looks at confirmed dates.
func (v *Validator) checkDataTypes(b Batch, r *ValidationReport) []*time.Time {
	parsed := make([]*time.Time, len(b.Rows))

	if b.HasColumn(ColCreatedAt) {
		for i, row := range b.Rows {
			val, ok := row[ColCreatedAt]
			if !ok || val.Null {
				continue // surfaced by the missing-value check
			}
			t, err := ParseTimestamp(val.Raw)
			if err != nil {
				r.Errors = append(r.Errors, fmt.Sprintf("invalid date format in %q (row %d): %v", ColCreatedAt, i+1, err))
				continue
			}
			parsed[i] = &t
		}
	}

	if b.HasColumn(ColText) {
		if n := countRows(b, ColText, func(val Value) bool {
			return !val.Null && val.Raw != "" && isNumeric(val.Raw)
		}); n > 0 && n == countRows(b, ColText, func(val Value) bool {
			return !val.Null && val.Raw != ""
		}) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%q column should contain text data", ColText))
		}
	}

	return parsed
}

func (v *Validator) checkMissingValues(b Batch, r *ValidationReport) {
	for _, col := range RequiredColumns {
		if !b.HasColumn(col) {
			continue
		}
		n := 0
		for _, row := range b.Rows {
			if val, ok := row[col]; !ok || val.Null {
				n++
			}
		}
		if n > 0 {
			r.Errors = append(r.Errors, fmt.Sprintf("column %q has %d missing values", col, n))
		}
	}
}

func (v *Validator) checkDataQuality(b Batch, parsed []*time.Time, r *ValidationReport) {
	if b.HasColumn(ColText) {
		short := countRows(b, ColText, func(val Value) bool {
			return !val.Null && utf8.RuneCountInString(val.Raw) < v.MinTextLength
		})
		if short > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%d tickets have very short text (<%d characters)", short, v.MinTextLength))
		}

		empty := countRows(b, ColText, func(val Value) bool {
			return !val.Null && strings.TrimSpace(val.Raw) == ""
		})
		if empty > 0 {
			r.Errors = append(r.Errors, fmt.Sprintf("%d tickets have empty text", empty))
		}
	}

	if b.HasColumn(ColCreatedAt) {
		now := v.Now()
		var future, old int
		for _, t := range parsed {
			if t == nil {
				continue
			}
			if t.After(now) {
				future++
			}
			if t.Before(v.EarliestDate) {
				old++
			}
		}
		if future > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%d tickets have future dates", future))
		}
		if old > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%d tickets are older than %s", old, v.EarliestDate.Format("2006-01-02")))
		}
	}
}

// countRows counts rows whose cell in col is present and matches pred.
func countRows(b Batch, col string, pred func(Value) bool) int {
	n := 0
	for _, row := range b.Rows {
		if val, ok := row[col]; ok && pred(val) {
			n++
		}
	}
	return n
}

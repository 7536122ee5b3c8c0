package core

// transform.go maps a validated batch into the canonical ticket shape. The
// transformer assumes the batch already passed validation and does not
// re-validate; an unparseable timestamp here aborts the whole batch so the
// output is deterministic.

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTicketIDStart is the first generated ticket ID sequence number.
const DefaultTicketIDStart = 100000

// DefaultTicketIDPrefix prefixes generated ticket IDs.
const DefaultTicketIDPrefix = "TKT"

// TransformOptions control ticket ID backfill and the processing clock.
// The backfill counter is scoped to one Transform call, never shared state;
// generated IDs are unique within a batch but not across batches.
type TransformOptions struct {
	// TicketIDStart is the sequence number of the first backfilled ID
	// (default 100000).
	TicketIDStart int

	// TicketIDPrefix is the prefix of backfilled IDs (default "TKT").
	TicketIDPrefix string

	// Now supplies the last_updated stamp (default time.Now). All rows in
	// one batch receive the same stamp.
	Now func() time.Time
}

func (o TransformOptions) withDefaults() TransformOptions {
	if o.TicketIDStart == 0 {
		o.TicketIDStart = DefaultTicketIDStart
	}
	if o.TicketIDPrefix == "" {
		o.TicketIDPrefix = DefaultTicketIDPrefix
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// columnRenames maps raw upload column names to canonical names. A pure
// relabeling; field identity carries forward.
var columnRenames = map[string]string{
	ColText:     ColTextContent,
	ColPriority: ColOriginalPriority,
}

// Transform normalizes a validated batch. Steps, in dependency order:
// parse created_at, clean text, backfill missing ticket IDs, derive
// text_length / created_date / created_month, rename columns to their
// canonical names, fill defaults for null entries of optional columns that
// exist in the batch, and stamp last_updated.
//
// Output preserves the input's row count and order. A row whose created_at
// fails to parse aborts the batch with a TransformError.
func Transform(b Batch, opts TransformOptions) (NormalizedBatch, error) {
	opts = opts.withDefaults()
	stamp := opts.Now()
	nextID := opts.TicketIDStart

	// Resolve the optional column set once; every row shares it.
	type mapping struct{ source, canonical string }
	var optional []mapping
	for _, col := range b.Columns {
		if col == ColCreatedAt || col == ColText || col == ColTicketID {
			continue
		}
		canonical := col
		if renamed, ok := columnRenames[col]; ok {
			canonical = renamed
		}
		optional = append(optional, mapping{source: col, canonical: canonical})
	}

	out := NormalizedBatch{Rows: make([]NormalizedRow, 0, len(b.Rows))}

	for i, row := range b.Rows {
		created, err := parseCreatedAt(row, i)
		if err != nil {
			return NormalizedBatch{}, err
		}

		cleaned := CleanText(row[ColText])

		ticketID := ""
		if val, ok := row[ColTicketID]; ok && !val.Null {
			ticketID = strings.TrimSpace(val.Raw)
		}
		if ticketID == "" {
			ticketID = fmt.Sprintf("%s-%d", opts.TicketIDPrefix, nextID)
			nextID++
		}

		nr := NormalizedRow{
			TicketID:     ticketID,
			CreatedAt:    created,
			TextContent:  cleaned,
			TextLength:   utf8.RuneCountInString(cleaned),
			CreatedDate:  time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, created.Location()),
			CreatedMonth: created.Format("2006-01"),
			LastUpdated:  stamp,
			Optional:     make(map[string]Value, len(optional)),
		}

		for _, m := range optional {
			val, present := row[m.source]
			if !present {
				val = Value{Null: true}
			}
			if val.Null {
				if def, known := OptionalDefaults[m.canonical]; known {
					val = Value{Raw: def}
				}
			}
			nr.Optional[m.canonical] = val
		}

		out.Rows = append(out.Rows, nr)
	}

	return out, nil
}

func parseCreatedAt(row Row, idx int) (time.Time, error) {
	val, ok := row[ColCreatedAt]
	if !ok || val.Null {
		return time.Time{}, &TransformError{Row: idx, Column: ColCreatedAt, Err: fmt.Errorf("missing value")}
	}
	t, err := ParseTimestamp(val.Raw)
	if err != nil {
		return time.Time{}, &TransformError{Row: idx, Column: ColCreatedAt, Err: err}
	}
	return t, nil
}

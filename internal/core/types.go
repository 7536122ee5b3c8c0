package core

import (
	"context"
	"time"
)

// Column names recognized in raw uploads.
const (
	ColCreatedAt    = "created_at"
	ColText         = "text"
	ColTicketID     = "ticket_id"
	ColPriority     = "priority"
	ColProduct      = "product"
	ColChannel      = "channel"
	ColCustomerTier = "customer_tier"
	ColCustomerID   = "customer_id"
)

// Canonical column names produced by the transformer.
const (
	ColTextContent      = "text_content"
	ColOriginalPriority = "original_priority"
	ColTextLength       = "text_length"
	ColCreatedDate      = "created_date"
	ColCreatedMonth     = "created_month"
	ColLastUpdated      = "last_updated"
	ColUploadID         = "upload_id"
)

// RequiredColumns must be present in every upload.
var RequiredColumns = []string{ColCreatedAt, ColText}

// TicketColumns is the persisted column set of the tickets table, in schema
// order. Prepare projects every row onto exactly this set.
var TicketColumns = []string{
	ColTicketID, ColUploadID, ColCreatedAt, ColTextContent,
	ColProduct, ColChannel, ColOriginalPriority, ColCustomerTier,
	ColCustomerID, ColTextLength, ColCreatedDate, ColCreatedMonth,
	ColLastUpdated,
}

// OptionalDefaults maps optional canonical columns to the value used when the
// source data has no usable entry.
var OptionalDefaults = map[string]string{
	ColProduct:          "Unknown",
	ColChannel:          "Unknown",
	ColOriginalPriority: "Medium",
	ColCustomerTier:     "Unknown",
	ColCustomerID:       "Unknown",
}

// Value is one cell of a raw upload. Null distinguishes an explicitly empty
// cell from a present value; a column absent from a Row entirely is a third
// state, represented by the key not being in the map.
type Value struct {
	Raw  string
	Null bool
}

// Str returns a present, non-null Value.
func Str(s string) Value { return Value{Raw: s} }

// Null returns an explicitly null Value.
func Null() Value { return Value{Null: true} }

// Row maps column names to cell values. Absent columns are absent keys.
type Row map[string]Value

// Batch is one uploaded table of tickets, processed together under one
// upload ID. Columns preserves the source column order.
type Batch struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the batch's column set includes name.
func (b Batch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizedRow is one ticket after transformation: required fields are
// parsed and typed, derived fields are computed, and canonical renames are
// applied. Optional holds the remaining columns exactly as they appeared in
// the source batch (post-rename, with defaults filled for null entries of
// known optional columns). Columns absent from the source stay absent here;
// Prepare resolves them.
type NormalizedRow struct {
	TicketID     string
	CreatedAt    time.Time
	TextContent  string
	TextLength   int
	CreatedDate  time.Time
	CreatedMonth string
	LastUpdated  time.Time
	Optional     map[string]Value
}

// NormalizedBatch is the transformer's output: same row count and order as
// the input batch.
type NormalizedBatch struct {
	Rows []NormalizedRow
}

// Ticket is one row of the persisted tickets table. Every field is concrete;
// optional columns missing from the source are filled with their defaults so
// storage rows are uniform.
type Ticket struct {
	TicketID         string
	UploadID         int64
	CreatedAt        time.Time
	TextContent      string
	Product          string
	Channel          string
	OriginalPriority string
	CustomerTier     string
	CustomerID       string
	TextLength       int
	CreatedDate      time.Time
	CreatedMonth     string
	LastUpdated      time.Time
}

// Upload is the metadata record for one ingestion attempt. Processed flips to
// true exactly once, after the full pipeline succeeds; it is the only
// mutation an Upload ever receives.
type Upload struct {
	ID         int64     `json:"upload_id"`
	Filename   string    `json:"filename"`
	RowCount   int       `json:"row_count"`
	UserNotes  string    `json:"user_notes,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	Processed  bool      `json:"processed"`
}

// TicketStore is the durable storage collaborator for uploads and tickets.
// Implementations must make BulkInsertTickets atomic: either every ticket is
// committed or none are. The returned count is the number of rows written.
type TicketStore interface {
	CreateUpload(ctx context.Context, filename string, rowCount int, userNotes string) (int64, error)
	BulkInsertTickets(ctx context.Context, tickets []Ticket) (int64, error)
	MarkUploadProcessed(ctx context.Context, uploadID int64) error
	ListUploads(ctx context.Context) ([]Upload, error)
	GetUpload(ctx context.Context, uploadID int64) (*Upload, error)
}

// Package store implements core.TicketStore on PostgreSQL using pgx.
//
// Each operation acquires a connection from the pool for its own scope and
// releases it on exit, including on error; the bulk ticket load runs inside
// a single transaction wrapping the COPY protocol so a failed load never
// leaves a partial batch behind.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"insighthub/internal/core"
)

// Store is the PostgreSQL-backed ticket store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store using the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	upload_id   BIGSERIAL PRIMARY KEY,
	filename    TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	user_notes  TEXT NOT NULL DEFAULT '',
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed   BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS tickets (
	ticket_id         TEXT NOT NULL,
	upload_id         BIGINT NOT NULL REFERENCES uploads(upload_id),
	created_at        TIMESTAMPTZ NOT NULL,
	text_content      TEXT NOT NULL,
	product           TEXT NOT NULL,
	channel           TEXT NOT NULL,
	original_priority TEXT NOT NULL,
	customer_tier     TEXT NOT NULL,
	customer_id       TEXT NOT NULL,
	text_length       INTEGER NOT NULL,
	created_date      DATE NOT NULL,
	created_month     TEXT NOT NULL,
	last_updated      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_upload_id ON tickets (upload_id);
CREATE INDEX IF NOT EXISTS idx_tickets_created_month ON tickets (created_month);
`

// EnsureSchema creates the uploads and tickets tables if they do not exist.
// There is no migration system; the schema is append-only by design.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateUpload inserts an upload record with processed=false and returns the
// storage-assigned upload ID.
func (s *Store) CreateUpload(ctx context.Context, filename string, rowCount int, userNotes string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO uploads (filename, row_count, user_notes, processed)
		 VALUES ($1, $2, $3, FALSE)
		 RETURNING upload_id`,
		filename, rowCount, userNotes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert upload record: %w", err)
	}
	return id, nil
}

// BulkInsertTickets writes the whole batch inside one transaction using the
// COPY protocol. On error the transaction is rolled back and the returned
// count is whatever COPY reported before failing; the table itself keeps
// none of the batch's rows.
func (s *Store) BulkInsertTickets(ctx context.Context, tickets []core.Ticket) (int64, error) {
	if len(tickets) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]any, len(tickets))
	for i, t := range tickets {
		rows[i] = []any{
			t.TicketID, t.UploadID, t.CreatedAt, t.TextContent,
			t.Product, t.Channel, t.OriginalPriority, t.CustomerTier,
			t.CustomerID, t.TextLength, t.CreatedDate, t.CreatedMonth,
			t.LastUpdated,
		}
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"tickets"},
		core.TicketColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return copied, fmt.Errorf("copy tickets: %w", err)
	}
	if copied != int64(len(tickets)) {
		return copied, fmt.Errorf("copy reported %d of %d rows", copied, len(tickets))
	}

	if err := tx.Commit(ctx); err != nil {
		return copied, fmt.Errorf("commit: %w", err)
	}
	return copied, nil
}

// MarkUploadProcessed flips the upload's processed flag to true. Returns
// core.ErrUploadNotFound if no row matched.
func (s *Store) MarkUploadProcessed(ctx context.Context, uploadID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE uploads SET processed = TRUE WHERE upload_id = $1`,
		uploadID,
	)
	if err != nil {
		return fmt.Errorf("mark upload %d processed: %w", uploadID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("upload %d: %w", uploadID, core.ErrUploadNotFound)
	}
	return nil
}

// ListUploads returns all uploads, most recent first.
func (s *Store) ListUploads(ctx context.Context) ([]core.Upload, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT upload_id, filename, row_count, user_notes, uploaded_at, processed
		 FROM uploads
		 ORDER BY uploaded_at DESC, upload_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []core.Upload
	for rows.Next() {
		var u core.Upload
		if err := rows.Scan(&u.ID, &u.Filename, &u.RowCount, &u.UserNotes, &u.UploadedAt, &u.Processed); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return uploads, nil
}

// GetUpload returns one upload's metadata, or core.ErrUploadNotFound.
func (s *Store) GetUpload(ctx context.Context, uploadID int64) (*core.Upload, error) {
	var u core.Upload
	err := s.pool.QueryRow(ctx,
		`SELECT upload_id, filename, row_count, user_notes, uploaded_at, processed
		 FROM uploads
		 WHERE upload_id = $1`,
		uploadID,
	).Scan(&u.ID, &u.Filename, &u.RowCount, &u.UserNotes, &u.UploadedAt, &u.Processed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("upload %d: %w", uploadID, core.ErrUploadNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query upload %d: %w", uploadID, err)
	}
	return &u, nil
}

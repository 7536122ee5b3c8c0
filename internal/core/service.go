package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ServiceOptions tune the pipeline. Zero values fall back to the defaults
// used by NewValidator and TransformOptions.
type ServiceOptions struct {
	TicketIDStart int
	MinTextLength int
	EarliestDate  time.Time
}

// Service coordinates the upload lifecycle: create upload record, validate,
// transform, prepare, bulk load, mark processed. Each batch is exclusively
// owned by the caller's flow; the Service itself holds no per-upload state
// and is safe for concurrent use.
type Service struct {
	store     TicketStore
	validator *Validator
	transform TransformOptions
}

// NewService creates a Service backed by the given store.
func NewService(store TicketStore, opts ServiceOptions) *Service {
	v := NewValidator()
	if opts.MinTextLength > 0 {
		v.MinTextLength = opts.MinTextLength
	}
	if !opts.EarliestDate.IsZero() {
		v.EarliestDate = opts.EarliestDate
	}

	return &Service{
		store:     store,
		validator: v,
		transform: TransformOptions{TicketIDStart: opts.TicketIDStart},
	}
}

// Validate runs the rule engine over a batch without touching storage.
// Callers use this for a dry run before committing to an ingest.
func (s *Service) Validate(b Batch) ValidationReport {
	return s.validator.Validate(b)
}

// Ingest runs the full upload lifecycle for one batch and returns the
// upload ID. The ID is returned even when a later stage fails, so a
// permanently unprocessed upload is always attributable; callers should
// check the error before trusting the data.
//
// The lifecycle is all-or-nothing from the caller's perspective: either the
// returned upload ends processed=true with every row stored, or it stays
// processed=false and the store holds none of the batch's rows.
func (s *Service) Ingest(ctx context.Context, b Batch, filename, userNotes string) (int64, error) {
	logger := slog.Default().With(
		"ingest_run", uuid.New().String(),
		"filename", filename,
		"rows", len(b.Rows),
	)

	uploadID, err := s.store.CreateUpload(ctx, filename, len(b.Rows), userNotes)
	if err != nil {
		logger.Error("failed to create upload record", "error", err)
		return 0, fmt.Errorf("create upload record: %w", err)
	}
	logger = logger.With("upload_id", uploadID)
	logger.Info("upload record created")

	report := s.validator.Validate(b)
	if !report.IsValid() {
		logger.Warn("validation failed",
			"errors", len(report.Errors),
			"warnings", len(report.Warnings),
		)
		return uploadID, &ValidationFailedError{UploadID: uploadID, Report: report}
	}
	if len(report.Warnings) > 0 {
		logger.Warn("validation passed with warnings", "warnings", len(report.Warnings))
	}

	normalized, err := Transform(b, s.transform)
	if err != nil {
		if tErr, ok := err.(*TransformError); ok {
			tErr.UploadID = uploadID
		}
		logger.Error("transformation failed", "error", err)
		return uploadID, err
	}

	tickets := Prepare(normalized, uploadID)

	written, err := s.store.BulkInsertTickets(ctx, tickets)
	if err != nil {
		logger.Error("bulk load failed", "error", err, "written", written)
		return uploadID, &LoadError{
			UploadID: uploadID,
			Expected: len(tickets),
			Written:  written,
			Partial:  written > 0,
			Err:      err,
		}
	}
	if written != int64(len(tickets)) {
		logger.Error("bulk load incomplete", "expected", len(tickets), "written", written)
		return uploadID, &LoadError{
			UploadID: uploadID,
			Expected: len(tickets),
			Written:  written,
			Partial:  true,
			Err:      fmt.Errorf("store reported %d of %d rows written", written, len(tickets)),
		}
	}

	if err := s.store.MarkUploadProcessed(ctx, uploadID); err != nil {
		logger.Error("failed to mark upload processed", "error", err)
		return uploadID, fmt.Errorf("mark upload %d processed: %w", uploadID, err)
	}

	logger.Info("upload processed", "tickets", written)
	return uploadID, nil
}

// ListUploads returns all uploads, most recent first.
func (s *Service) ListUploads(ctx context.Context) ([]Upload, error) {
	return s.store.ListUploads(ctx)
}

// GetUpload returns one upload's metadata, or ErrUploadNotFound.
func (s *Service) GetUpload(ctx context.Context, uploadID int64) (*Upload, error) {
	return s.store.GetUpload(ctx, uploadID)
}

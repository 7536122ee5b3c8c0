// Package core provides the business logic for ticket ingestion.
//
// This package is the heart of the ingestion pipeline, containing all domain
// logic independent of any transport or storage driver. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Pipeline
//
// An uploaded table of tickets flows through four stages:
//
//  1. Validation: [Validator.Validate] inspects the raw [Batch] and produces a
//     [ValidationReport]. Errors block ingestion; warnings never do.
//  2. Transformation: [Transform] normalizes the batch into the canonical
//     ticket shape (parsed timestamps, cleaned text, backfilled ticket IDs,
//     derived fields, defaults).
//  3. Preparation: [Prepare] projects each normalized row onto the persisted
//     column set and stamps it with an upload ID.
//  4. Loading: the [TicketStore] bulk-inserts the prepared rows.
//
// # Upload lifecycle
//
// [Service.Ingest] drives the full lifecycle. An upload record is written
// before any ticket data is touched, so a failure at any later stage is
// always attributable to a known upload ID. The record's processed flag flips
// to true exactly once, after the bulk load succeeds. An upload whose flag
// stays false permanently indicates ingestion failed at some step; callers
// may re-attempt as a new upload.
//
// # Error Handling
//
// Validation issues are returned as data (the report), never as faults. All
// other failures propagate as typed errors: [ValidationFailedError],
// [TransformError], and [LoadError]. Technical errors can be mapped to
// user-friendly messages with [MapError].
package core

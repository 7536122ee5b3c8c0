package core

// errors.go defines the typed failures the ingestion lifecycle can surface,
// plus the mapping from technical errors to user-friendly messages with
// support codes.
//
// Error codes are grouped by category:
//
//	VAL001 - Validation failed: the uploaded data has blocking problems
//	ING001 - Transformation failed: a value slipped past validation
//	DB001  - Load failed: the database rejected the bulk insert
//	DB002  - Partial load: some rows were written before the failure
//	DB003  - Connection problem: the database is unreachable
//	UPL001 - Upload not found

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUploadNotFound is returned when an upload ID has no record.
var ErrUploadNotFound = errors.New("upload not found")

// ValidationFailedError is returned by Ingest when the batch fails
// validation. The upload record was already created and stays unprocessed;
// the report tells the caller what to fix.
type ValidationFailedError struct {
	UploadID int64
	Report   ValidationReport
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("upload %d: validation failed with %d errors", e.UploadID, len(e.Report.Errors))
}

// TransformError indicates an assumption violated after validation, such as
// an unparseable date slipping through. The batch is abandoned and the
// upload stays unprocessed. Row is zero-based.
type TransformError struct {
	UploadID int64
	Row      int
	Column   string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform row %d column %q: %v", e.Row, e.Column, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// LoadError indicates the bulk write was rejected or only partially
// completed. Partial is true when some rows may have been sent before the
// failure; the store's transaction is expected to roll those back, and a
// partial write must never be treated as success.
type LoadError struct {
	UploadID int64
	Expected int
	Written  int64
	Partial  bool
	Err      error
}

func (e *LoadError) Error() string {
	if e.Partial {
		return fmt.Sprintf("upload %d: partial load (%d of %d rows): %v", e.UploadID, e.Written, e.Expected, e.Err)
	}
	return fmt.Sprintf("upload %d: bulk load failed: %v", e.UploadID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UserMessage is a user-friendly rendering of a technical error, with a
// support code and a suggested action.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// MapError converts a pipeline error into a UserMessage for display.
// Technical details stay in the server logs; the user sees the category,
// the code, and what to do next.
func MapError(err error) UserMessage {
	var vErr *ValidationFailedError
	if errors.As(err, &vErr) {
		return UserMessage{
			Code:    "VAL001",
			Message: "The uploaded data failed validation",
			Action:  "Fix the reported errors and upload again",
		}
	}

	var tErr *TransformError
	if errors.As(err, &tErr) {
		return UserMessage{
			Code:    "ING001",
			Message: "The data could not be transformed for storage",
			Action:  "Check date formats and re-upload; contact support if this persists",
		}
	}

	var lErr *LoadError
	if errors.As(err, &lErr) {
		if lErr.Partial {
			return UserMessage{
				Code:    "DB002",
				Message: "The upload was only partially stored and has been rolled back",
				Action:  "Try the upload again",
			}
		}
		return UserMessage{
			Code:    "DB001",
			Message: "The database rejected the upload",
			Action:  "Try again in a few moments",
		}
	}

	if errors.Is(err, ErrUploadNotFound) {
		return UserMessage{
			Code:    "UPL001",
			Message: "No upload with that ID exists",
			Action:  "Check the upload ID and try again",
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") {
		return UserMessage{
			Code:    "DB003",
			Message: "Unable to reach the database",
			Action:  "Try again in a few moments",
		}
	}

	return UserMessage{
		Code:    "GEN001",
		Message: "An unexpected error occurred",
		Action:  "Try again; contact support with this code if it persists",
	}
}

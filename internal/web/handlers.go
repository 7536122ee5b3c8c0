package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"insighthub/internal/core"
	"insighthub/internal/tabular"
)

// ingestResponse is returned by a successful POST /api/uploads.
type ingestResponse struct {
	UploadID int64 `json:"upload_id"`
	Rows     int   `json:"rows"`
}

// validateResponse is returned by POST /api/uploads/validate.
type validateResponse struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Report   string   `json:"report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIngest runs the full upload lifecycle for a multipart CSV file.
// On validation failure it returns 422 with the report; the upload record
// exists either way, so the response always names the upload ID when one
// was created.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	batch, filename, ok := s.readBatch(w, r)
	if !ok {
		return
	}
	notes := r.FormValue("notes")

	uploadID, err := s.service.Ingest(r.Context(), batch, filename, notes)
	if err != nil {
		var vErr *core.ValidationFailedError
		if errors.As(err, &vErr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"upload_id": vErr.UploadID,
				"is_valid":  false,
				"errors":    vErr.Report.Errors,
				"warnings":  vErr.Report.Warnings,
				"report":    vErr.Report.Render(),
			})
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, ingestResponse{
		UploadID: uploadID,
		Rows:     len(batch.Rows),
	})
}

// handleValidate runs the rule engine only, without touching storage.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	batch, _, ok := s.readBatch(w, r)
	if !ok {
		return
	}

	report := s.service.Validate(batch)
	respondJSON(w, http.StatusOK, validateResponse{
		IsValid:  report.IsValid(),
		Errors:   report.Errors,
		Warnings: report.Warnings,
		Report:   report.Render(),
	})
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.service.ListUploads(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if uploads == nil {
		uploads = []core.Upload{}
	}
	respondJSON(w, http.StatusOK, uploads)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "uploadID"), 10, 64)
	if err != nil {
		s.respondError(w, r, core.ErrUploadNotFound, http.StatusNotFound)
		return
	}

	upload, err := s.service.GetUpload(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrUploadNotFound) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	respondJSON(w, http.StatusOK, upload)
}

// readBatch extracts the uploaded CSV file from a multipart form and parses
// it into a batch. Writes the error response itself and returns ok=false on
// failure.
func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) (core.Batch, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return core.Batch{}, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return core.Batch{}, "", false
	}

	batch, err := tabular.ReadCSV(data)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return core.Batch{}, "", false
	}

	return batch, header.Filename, true
}

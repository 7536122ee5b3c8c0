package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeStore is an in-memory TicketStore with failure injection for testing
// the upload lifecycle.
type fakeStore struct {
	uploads map[int64]*Upload
	tickets map[int64][]Ticket
	nextID  int64

	createErr error
	bulkErr   error
	// bulkFailAfter simulates a store that reports progress before failing:
	// BulkInsertTickets returns this many rows written alongside bulkErr.
	bulkFailAfter int64
	markErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		uploads: make(map[int64]*Upload),
		tickets: make(map[int64][]Ticket),
	}
}

func (f *fakeStore) CreateUpload(ctx context.Context, filename string, rowCount int, userNotes string) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	f.uploads[f.nextID] = &Upload{
		ID:        f.nextID,
		Filename:  filename,
		RowCount:  rowCount,
		UserNotes: userNotes,
	}
	return f.nextID, nil
}

func (f *fakeStore) BulkInsertTickets(ctx context.Context, tickets []Ticket) (int64, error) {
	if f.bulkErr != nil {
		return f.bulkFailAfter, f.bulkErr
	}
	if len(tickets) > 0 {
		f.tickets[tickets[0].UploadID] = tickets
	}
	return int64(len(tickets)), nil
}

func (f *fakeStore) MarkUploadProcessed(ctx context.Context, uploadID int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	u, ok := f.uploads[uploadID]
	if !ok {
		return ErrUploadNotFound
	}
	u.Processed = true
	return nil
}

func (f *fakeStore) ListUploads(ctx context.Context) ([]Upload, error) {
	out := make([]Upload, 0, len(f.uploads))
	for id := f.nextID; id >= 1; id-- {
		if u, ok := f.uploads[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetUpload(ctx context.Context, uploadID int64) (*Upload, error) {
	u, ok := f.uploads[uploadID]
	if !ok {
		return nil, ErrUploadNotFound
	}
	cp := *u
	return &cp, nil
}

func TestIngest_Success(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, ServiceOptions{})

	uploadID, err := svc.Ingest(context.Background(), validBatch(10), "tickets.csv", "first load")
	if err != nil {
		t.Fatalf("Ingest error = %v", err)
	}

	u := st.uploads[uploadID]
	if u == nil {
		t.Fatal("upload record not created")
	}
	if !u.Processed {
		t.Error("Processed = false, want true")
	}
	if u.RowCount != 10 {
		t.Errorf("RowCount = %d, want 10", u.RowCount)
	}
	if u.Filename != "tickets.csv" {
		t.Errorf("Filename = %q, want tickets.csv", u.Filename)
	}
	if got := len(st.tickets[uploadID]); got != 10 {
		t.Errorf("stored tickets = %d, want 10", got)
	}
	for _, tk := range st.tickets[uploadID] {
		if tk.UploadID != uploadID {
			t.Errorf("ticket UploadID = %d, want %d", tk.UploadID, uploadID)
		}
	}
}

func TestIngest_TwoUploadsGetDistinctIDs(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, ServiceOptions{})
	ctx := context.Background()

	id1, err := svc.Ingest(ctx, validBatch(10), "a.csv", "")
	if err != nil {
		t.Fatalf("first Ingest error = %v", err)
	}
	id2, err := svc.Ingest(ctx, validBatch(10), "b.csv", "")
	if err != nil {
		t.Fatalf("second Ingest error = %v", err)
	}

	if id1 == id2 {
		t.Fatalf("upload IDs not distinct: %d", id1)
	}
	for _, id := range []int64{id1, id2} {
		u := st.uploads[id]
		if u.RowCount != 10 {
			t.Errorf("upload %d RowCount = %d, want 10", id, u.RowCount)
		}
		if !u.Processed {
			t.Errorf("upload %d Processed = false, want true", id)
		}
	}
}

func TestIngest_ValidationFailure(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, ServiceOptions{})

	b := validBatch(3)
	b.Rows[0][ColText] = Str("   ")
	b.Rows[2][ColText] = Str(" ")

	uploadID, err := svc.Ingest(context.Background(), b, "bad.csv", "")

	var vErr *ValidationFailedError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationFailedError", err)
	}
	if vErr.UploadID != uploadID {
		t.Errorf("error UploadID = %d, want %d", vErr.UploadID, uploadID)
	}
	if len(vErr.Report.Errors) == 0 {
		t.Error("report has no errors")
	}

	// the upload record exists but stays unprocessed, and no tickets landed
	u := st.uploads[uploadID]
	if u == nil {
		t.Fatal("upload record should exist for attribution")
	}
	if u.Processed {
		t.Error("Processed = true after validation failure")
	}
	if len(st.tickets[uploadID]) != 0 {
		t.Error("tickets stored despite validation failure")
	}
}

func TestIngest_LoadFailure(t *testing.T) {
	// storage fails mid-bulk-insert on row 7 of 10
	st := newFakeStore()
	st.bulkErr = fmt.Errorf("connection reset during copy")
	st.bulkFailAfter = 7

	svc := NewService(st, ServiceOptions{})
	uploadID, err := svc.Ingest(context.Background(), validBatch(10), "tickets.csv", "")

	var lErr *LoadError
	if !errors.As(err, &lErr) {
		t.Fatalf("error = %v, want LoadError", err)
	}
	if !lErr.Partial {
		t.Error("Partial = false, want true when rows were sent before failure")
	}
	if lErr.UploadID != uploadID {
		t.Errorf("LoadError UploadID = %d, want %d", lErr.UploadID, uploadID)
	}
	if lErr.Expected != 10 || lErr.Written != 7 {
		t.Errorf("Expected/Written = %d/%d, want 10/7", lErr.Expected, lErr.Written)
	}

	if st.uploads[uploadID].Processed {
		t.Error("Processed = true after load failure")
	}
}

func TestIngest_ShortWriteIsPartialLoad(t *testing.T) {
	// the store returns no error but reports fewer rows than expected
	st := newFakeStore()
	svc := NewService(&shortWriteStore{fakeStore: st}, ServiceOptions{})

	uploadID, err := svc.Ingest(context.Background(), validBatch(5), "tickets.csv", "")

	var lErr *LoadError
	if !errors.As(err, &lErr) {
		t.Fatalf("error = %v, want LoadError", err)
	}
	if !lErr.Partial {
		t.Error("Partial = false, want true for short write")
	}
	if st.uploads[uploadID].Processed {
		t.Error("Processed = true after short write")
	}
}

type shortWriteStore struct {
	*fakeStore
}

func (s *shortWriteStore) BulkInsertTickets(ctx context.Context, tickets []Ticket) (int64, error) {
	n, err := s.fakeStore.BulkInsertTickets(ctx, tickets)
	if err != nil {
		return n, err
	}
	return n - 1, nil
}

func TestIngest_MarkProcessedFailure(t *testing.T) {
	st := newFakeStore()
	st.markErr = fmt.Errorf("deadlock detected")

	svc := NewService(st, ServiceOptions{})
	uploadID, err := svc.Ingest(context.Background(), validBatch(2), "tickets.csv", "")
	if err == nil {
		t.Fatal("expected error when mark-processed fails")
	}
	if st.uploads[uploadID].Processed {
		t.Error("Processed = true despite mark failure")
	}
}

func TestIngest_CreateUploadFailure(t *testing.T) {
	st := newFakeStore()
	st.createErr = fmt.Errorf("connection refused")

	svc := NewService(st, ServiceOptions{})
	_, err := svc.Ingest(context.Background(), validBatch(2), "tickets.csv", "")
	if err == nil {
		t.Fatal("expected error when upload record creation fails")
	}
	if len(st.uploads) != 0 {
		t.Error("no upload should exist")
	}
}

func TestIngest_TicketIDStartOption(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, ServiceOptions{TicketIDStart: 900000})

	uploadID, err := svc.Ingest(context.Background(), validBatch(1), "tickets.csv", "")
	if err != nil {
		t.Fatalf("Ingest error = %v", err)
	}
	if got := st.tickets[uploadID][0].TicketID; got != "TKT-900000" {
		t.Errorf("TicketID = %q, want TKT-900000", got)
	}
}

func TestListUploads_MostRecentFirst(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st, ServiceOptions{})
	ctx := context.Background()

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		if _, err := svc.Ingest(ctx, validBatch(1), name, ""); err != nil {
			t.Fatalf("Ingest(%s) error = %v", name, err)
		}
	}

	uploads, err := svc.ListUploads(ctx)
	if err != nil {
		t.Fatalf("ListUploads error = %v", err)
	}
	if len(uploads) != 3 {
		t.Fatalf("uploads = %d, want 3", len(uploads))
	}
	if uploads[0].Filename != "c.csv" || uploads[2].Filename != "a.csv" {
		t.Errorf("order = [%s %s %s], want most recent first",
			uploads[0].Filename, uploads[1].Filename, uploads[2].Filename)
	}
}

func TestGetUpload_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceOptions{})
	_, err := svc.GetUpload(context.Background(), 999)
	if !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("error = %v, want ErrUploadNotFound", err)
	}
}

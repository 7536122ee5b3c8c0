package core

import (
	"testing"
)

func TestPrepare_StampsUploadID(t *testing.T) {
	b := Batch{
		Columns: []string{ColCreatedAt, ColText},
		Rows: []Row{
			{ColCreatedAt: Str("2024-01-15"), ColText: Str("first ticket body text")},
			{ColCreatedAt: Str("2024-01-16"), ColText: Str("second ticket body text")},
		},
	}
	nb, err := Transform(b, testTransformOpts())
	if err != nil {
		t.Fatalf("Transform error = %v", err)
	}

	tickets := Prepare(nb, 42)
	if len(tickets) != 2 {
		t.Fatalf("tickets = %d, want 2", len(tickets))
	}
	for i, tk := range tickets {
		if tk.UploadID != 42 {
			t.Errorf("ticket %d UploadID = %d, want 42", i, tk.UploadID)
		}
	}
}

func TestPrepare_FillsAbsentOptionalColumns(t *testing.T) {
	// Only required columns present; every optional persisted column must
	// still come out filled with its default.
	b := Batch{
		Columns: []string{ColCreatedAt, ColText},
		Rows: []Row{
			{ColCreatedAt: Str("2024-01-15"), ColText: Str("a ticket with no optional columns")},
		},
	}
	nb, err := Transform(b, testTransformOpts())
	if err != nil {
		t.Fatalf("Transform error = %v", err)
	}

	tk := Prepare(nb, 1)[0]
	if tk.Product != "Unknown" {
		t.Errorf("Product = %q, want Unknown", tk.Product)
	}
	if tk.Channel != "Unknown" {
		t.Errorf("Channel = %q, want Unknown", tk.Channel)
	}
	if tk.OriginalPriority != "Medium" {
		t.Errorf("OriginalPriority = %q, want Medium", tk.OriginalPriority)
	}
	if tk.CustomerTier != "Unknown" {
		t.Errorf("CustomerTier = %q, want Unknown", tk.CustomerTier)
	}
	if tk.CustomerID != "Unknown" {
		t.Errorf("CustomerID = %q, want Unknown", tk.CustomerID)
	}
}

func TestPrepare_DropsUnpersistedColumns(t *testing.T) {
	// category is accepted in uploads but is not part of the persisted
	// schema; Prepare must drop it while keeping the persisted optionals.
	b := Batch{
		Columns: []string{ColCreatedAt, ColText, "category", ColChannel},
		Rows: []Row{
			{
				ColCreatedAt: Str("2024-01-15"),
				ColText:      Str("ticket with a category column"),
				"category":   Str("Billing"),
				ColChannel:   Str("Email"),
			},
		},
	}
	nb, err := Transform(b, testTransformOpts())
	if err != nil {
		t.Fatalf("Transform error = %v", err)
	}

	tk := Prepare(nb, 1)[0]
	if tk.Channel != "Email" {
		t.Errorf("Channel = %q, want Email", tk.Channel)
	}
	// The Ticket struct is the persisted projection; category has no home
	// in it, which is the point of this test compiling at all.
}

func TestPipeline_RoundTripRowCount(t *testing.T) {
	// validate -> transform -> prepare preserves the row count
	b := validBatch(10)

	report := testValidator().Validate(b)
	if !report.IsValid() {
		t.Fatalf("validate failed: %v", report.Errors)
	}

	nb, err := Transform(b, testTransformOpts())
	if err != nil {
		t.Fatalf("Transform error = %v", err)
	}

	tickets := Prepare(nb, 7)
	if len(tickets) != len(b.Rows) {
		t.Errorf("tickets = %d, want %d", len(tickets), len(b.Rows))
	}
}

func TestTicketColumns_MatchSchema(t *testing.T) {
	want := []string{
		"ticket_id", "upload_id", "created_at", "text_content",
		"product", "channel", "original_priority", "customer_tier",
		"customer_id", "text_length", "created_date", "created_month",
		"last_updated",
	}
	if len(TicketColumns) != len(want) {
		t.Fatalf("TicketColumns has %d columns, want %d", len(TicketColumns), len(want))
	}
	for i, col := range want {
		if TicketColumns[i] != col {
			t.Errorf("TicketColumns[%d] = %q, want %q", i, TicketColumns[i], col)
		}
	}
}

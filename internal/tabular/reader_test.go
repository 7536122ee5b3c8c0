package tabular

import (
	"testing"
)

func TestReadCSV(t *testing.T) {
	data := []byte("created_at,text,priority\n" +
		"2024-01-15 10:00:00,App crashes on startup,High\n" +
		"2024-01-16 09:30:00,cannot login,\n")

	batch, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV error = %v", err)
	}

	wantCols := []string{"created_at", "text", "priority"}
	if len(batch.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", batch.Columns, wantCols)
	}
	for i, c := range wantCols {
		if batch.Columns[i] != c {
			t.Errorf("column %d = %q, want %q", i, batch.Columns[i], c)
		}
	}

	if len(batch.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(batch.Rows))
	}

	if v := batch.Rows[0]["text"]; v.Null || v.Raw != "App crashes on startup" {
		t.Errorf("row 0 text = %+v", v)
	}

	// empty cell becomes an explicit null
	if v, ok := batch.Rows[1]["priority"]; !ok || !v.Null {
		t.Errorf("row 1 priority = %+v, want null", v)
	}
}

func TestReadCSV_HeaderCleaning(t *testing.T) {
	// BOM, mixed case, surrounding space
	data := []byte("\xef\xbb\xbfCreated_At , TEXT\n2024-01-15,hello there friend\n")

	batch, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV error = %v", err)
	}
	if batch.Columns[0] != "created_at" || batch.Columns[1] != "text" {
		t.Errorf("columns = %v, want [created_at text]", batch.Columns)
	}
}

func TestReadCSV_ShortRow(t *testing.T) {
	data := []byte("created_at,text,channel\n2024-01-15,short row here\n")

	batch, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV error = %v", err)
	}

	row := batch.Rows[0]
	if _, ok := row["channel"]; ok {
		t.Error("channel should be absent for a short row, not null")
	}
	if v := row["text"]; v.Raw != "short row here" {
		t.Errorf("text = %+v", v)
	}
}

func TestReadCSV_SkipsBlankRowsAndLeadingNoise(t *testing.T) {
	data := []byte("\n  , \ncreated_at,text\n2024-01-15,real data row\n\n")

	batch, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV error = %v", err)
	}
	if len(batch.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(batch.Rows))
	}
	if batch.Columns[0] != "created_at" {
		t.Errorf("header not found past blank rows: %v", batch.Columns)
	}
}

func TestReadCSV_ExcelFormulaPrefix(t *testing.T) {
	data := []byte("created_at,text,ticket_id\n2024-01-15,some ticket text,=\"TKT-9\"\n")

	batch, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV error = %v", err)
	}
	if v := batch.Rows[0]["ticket_id"]; v.Raw != "TKT-9" {
		t.Errorf("ticket_id = %+v, want TKT-9", v)
	}
}

func TestReadCSV_EmptyFile(t *testing.T) {
	if _, err := ReadCSV([]byte("")); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := ReadCSV([]byte("\n\n")); err == nil {
		t.Error("expected error for file with only blank rows")
	}
}

func TestReadCSV_InvalidUTF8(t *testing.T) {
	data := []byte("created_at,text\n2024-01-15,bad\xff\xfebytes in here\n")

	batch, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV error = %v", err)
	}
	v := batch.Rows[0]["text"]
	if v.Null || v.Raw == "" {
		t.Fatalf("text = %+v", v)
	}
}

package sheets

import "testing"

func TestScanUnprocessedStopsAtFirstSettledRow(t *testing.T) {
	values := [][]any{
		{"Timestamp", "Confession", "Status"},
		{"01/01/2026", "oldest, already posted", "1"},
		{"02/01/2026", "rejected earlier", "0"},
		{"03/01/2026", "first new one"},
		{"04/01/2026", "second new one", ""},
	}

	got := scanUnprocessed(values)
	if len(got) != 2 {
		t.Fatalf("expected 2 unprocessed rows, got %d", len(got))
	}
	if got[0].RowNum != 4 || got[1].RowNum != 5 {
		t.Fatalf("rows out of order: %d, %d", got[0].RowNum, got[1].RowNum)
	}
	if got[0].Text != "first new one" {
		t.Fatalf("unexpected text: %q", got[0].Text)
	}
}

func TestScanUnprocessedSettledRowShadowsOlderBlanks(t *testing.T) {
	// A blank status above a settled row never surfaces; the scan is a
	// strict suffix, not a filter.
	values := [][]any{
		{"Timestamp", "Confession", "Status"},
		{"01/01/2026", "missed somehow", ""},
		{"02/01/2026", "posted", "1"},
		{"03/01/2026", "new", ""},
	}

	got := scanUnprocessed(values)
	if len(got) != 1 || got[0].RowNum != 4 {
		t.Fatalf("expected only the trailing row, got %+v", got)
	}
}

func TestScanUnprocessedHeaderOnlySheet(t *testing.T) {
	if got := scanUnprocessed([][]any{{"Timestamp", "Confession", "Status"}}); got != nil {
		t.Fatalf("expected nil for a header-only sheet, got %v", got)
	}
	if got := scanUnprocessed(nil); got != nil {
		t.Fatalf("expected nil for an empty sheet, got %v", got)
	}
}

func TestScanUnprocessedShortRows(t *testing.T) {
	values := [][]any{
		{"Timestamp", "Confession", "Status"},
		{"01/01/2026"},
	}

	got := scanUnprocessed(values)
	if len(got) != 1 {
		t.Fatalf("expected the short row, got %d", len(got))
	}
	if got[0].Text != "" {
		t.Fatalf("missing text cell should read empty, got %q", got[0].Text)
	}
}

func TestColumnLetter(t *testing.T) {
	if columnLetter(3) != "C" || columnLetter(4) != "D" || columnLetter(5) != "E" {
		t.Fatal("column letters off")
	}
}

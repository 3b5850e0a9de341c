package google

import (
	"context"
	"testing"
)

func TestToStrings(t *testing.T) {
	in := []any{" 2026-08-30 ", "Доход", 1200.5, true}
	got := toStrings(in)
	want := []string{"2026-08-30", "Доход", "1200.5", "true"}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toStrings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRowsToEntriesSkipsMalformed(t *testing.T) {
	rows := [][]string{
		{"2026-08-01", "Доход", "1200", "еда", "кафе"},
		{"not-a-date", "Доход", "1200", "еда", "кафе"},
		{"2026-08-02", "Расход", "пятьсот", "дом", "аренда"},
		{"2026-08-03", "Расход", "500", "дом", "аренда"},
	}
	got := rowsToEntries(context.Background(), rows)
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Date.Day() != 1 || got[1].Date.Day() != 3 {
		t.Errorf("wrong rows survived: days %d, %d", got[0].Date.Day(), got[1].Date.Day())
	}
}

func TestSpreadsheetURL(t *testing.T) {
	if got := SpreadsheetURL("abc123"); got != "https://docs.google.com/spreadsheets/d/abc123" {
		t.Errorf("SpreadsheetURL = %q", got)
	}
}

func TestClientReady(t *testing.T) {
	var c Client
	if err := c.ready(); err == nil {
		t.Error("zero client must not be ready")
	}
}

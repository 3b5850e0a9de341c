package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower latin unchanged", "food", "food"},
		{"upper latin folded", "FOOD", "food"},
		{"trailing space stripped", "Food ", "food"},
		{"inner punctuation stripped", "кафе-бар", "кафебар"},
		{"cyrillic folded", "ЕДА", "еда"},
		{"digits kept", "кафе 24/7", "кафе247"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"Food ", "ЕДА", "кафе-бар 2"} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, twice, once)
		}
	}
}

func TestCategoryPairKey(t *testing.T) {
	a := CategoryPair{Primary: "Еда", Secondary: "Кафе "}
	b := CategoryPair{Primary: "еда", Secondary: "КАФЕ"}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	// The separator must keep (ab, c) and (a, bc) apart.
	x := CategoryPair{Primary: "ab", Secondary: "c"}
	y := CategoryPair{Primary: "a", Secondary: "bc"}
	if x.Key() == y.Key() {
		t.Errorf("distinct pairs collide on key %q", x.Key())
	}
}

func TestKindValid(t *testing.T) {
	if !Income.Valid() || !Expense.Valid() {
		t.Error("built-in kinds must be valid")
	}
	if Kind("Прочее").Valid() {
		t.Error("unknown kind must be invalid")
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name    string
		cols    []string
		wantErr bool
	}{
		{"valid", []string{"2026-08-30", "Доход", "1200.5", "еда", "кафе"}, false},
		{"decimal comma amount", []string{"2026-08-30", "Расход", "99,90", "дом", "аренда"}, false},
		{"short row", []string{"2026-08-30", "Доход", "12"}, true},
		{"bad date", []string{"30.08.2026", "Доход", "12", "a", "b"}, true},
		{"bad amount", []string{"2026-08-30", "Доход", "тысяча", "a", "b"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseRow(tt.cols)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRow(%v) expected error, got %+v", tt.cols, e)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRow(%v) unexpected error: %v", tt.cols, err)
			}
			if e.Primary != tt.cols[3] || e.Secondary != tt.cols[4] {
				t.Errorf("categories not preserved: %+v", e)
			}
		})
	}
}

func TestEntryColumns(t *testing.T) {
	e := Entry{
		Date:      time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC),
		Kind:      Expense,
		Amount:    decimal.RequireFromString("1200"),
		Primary:   "Еда",
		Secondary: "Кафе",
	}
	cols := e.Columns()
	if len(cols) != 5 {
		t.Fatalf("Columns() length = %d, want 5", len(cols))
	}
	if cols[0] != "2026-08-30" {
		t.Errorf("date column = %q, want date-only ISO form", cols[0])
	}
	if cols[1] != "Расход" {
		t.Errorf("kind column = %q", cols[1])
	}
	// Literal casing of categories is what gets stored.
	if cols[3] != "Еда" || cols[4] != "Кафе" {
		t.Errorf("literal categories not preserved: %v", cols[3:])
	}
}

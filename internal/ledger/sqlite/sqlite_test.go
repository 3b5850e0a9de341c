package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "kopilka.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func entry(day int, amount string) core.Entry {
	return core.Entry{
		Date:      time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		Kind:      core.Expense,
		Amount:    decimal.RequireFromString(amount),
		Primary:   "дом",
		Secondary: "аренда",
	}
}

func TestAppendRecentRowCount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for day := 1; day <= 6; day++ {
		if err := repo.Append(ctx, entry(day, "100")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	n, err := repo.RowCount(ctx)
	if err != nil {
		t.Fatalf("row count: %v", err)
	}
	if n != 6 {
		t.Errorf("RowCount = %d, want 6", n)
	}

	recent, err := repo.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("recent length = %d, want 5", len(recent))
	}
	for i, e := range recent {
		if want := 2 + i; e.Date.Day() != want {
			t.Errorf("recent[%d].Day = %d, want %d (oldest first)", i, e.Date.Day(), want)
		}
	}
}

func TestUpdateAndDeleteByRowNumber(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for day := 1; day <= 4; day++ {
		if err := repo.Append(ctx, entry(day, "100")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// Row 3 = second entry.
	updated := entry(2, "250")
	updated.Kind = core.Income
	if err := repo.Update(ctx, 3, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	all, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if all[1].Amount.String() != "250" || all[1].Kind != core.Income {
		t.Errorf("row 3 not updated: %+v", all[1])
	}

	if err := repo.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, _ := repo.RowCount(ctx)
	if n != 3 {
		t.Errorf("RowCount after delete = %d, want 3", n)
	}
	rest, _ := repo.Recent(ctx, 10)
	if rest[0].Date.Day() != 2 {
		t.Errorf("oldest remaining day = %d, want 2", rest[0].Date.Day())
	}

	if err := repo.Delete(ctx, 1); !errors.Is(err, ledger.ErrRowOutOfRange) {
		t.Errorf("Delete(header row) = %v, want ErrRowOutOfRange", err)
	}
	if err := repo.Delete(ctx, 99); !errors.Is(err, ledger.ErrRowOutOfRange) {
		t.Errorf("Delete(99) = %v, want ErrRowOutOfRange", err)
	}
}

func TestCategoryRegistry(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.EnsureRegistry(ctx); err != nil {
		t.Fatalf("ensure registry: %v", err)
	}
	if err := repo.AddCategory(ctx, "Еда", "Кафе"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	// Same normalized identity, different literal text: no duplicate.
	if err := repo.AddCategory(ctx, "еда ", "КАФЕ"); err != nil {
		t.Fatalf("add duplicate category: %v", err)
	}

	pairs, err := repo.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("registry size = %d, want 1", len(pairs))
	}
	p := pairs[core.CategoryPair{Primary: "еда", Secondary: "кафе"}.Key()]
	if p.Primary != "Еда" {
		t.Errorf("first literal text should win, got %q", p.Primary)
	}
}

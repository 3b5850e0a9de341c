// Package sqlite is a local ledger backend for running without a Google
// spreadsheet. It keeps the sheet backend's row numbering (header at row 1)
// by mapping row numbers onto insertion order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/log"
)

type Repository struct {
	db   *sql.DB
	path string
}

var _ ledger.Ledger = (*Repository)(nil)

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Default().WithComponent(log.ComponentSQLite).Debug("migrations applied", "path", dbPath)

	return &Repository{db: db, path: dbPath}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Append(ctx context.Context, e core.Entry) error {
	cols := e.Columns()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (entry_date, kind, amount, primary_category, secondary_category)
		 VALUES (?, ?, ?, ?, ?)`,
		cols[0], cols[1], cols[2], cols[3], cols[4])
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (r *Repository) Recent(ctx context.Context, n int) ([]core.Entry, error) {
	// Newest n by id, then reversed to storage order (oldest first).
	rows, err := r.db.QueryContext(ctx,
		`SELECT entry_date, kind, amount, primary_category, secondary_category
		 FROM entries ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("select recent entries: %w", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		var cols [5]string
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4]); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e, err := core.ParseRow(cols[:])
		if err != nil {
			return nil, fmt.Errorf("parse stored entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *Repository) RowCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (r *Repository) Update(ctx context.Context, rowNum int, e core.Entry) error {
	id, err := r.idAtRow(ctx, rowNum)
	if err != nil {
		return fmt.Errorf("update row %d: %w", rowNum, err)
	}
	cols := e.Columns()
	_, err = r.db.ExecContext(ctx,
		`UPDATE entries
		 SET entry_date = ?, kind = ?, amount = ?, primary_category = ?, secondary_category = ?
		 WHERE id = ?`,
		cols[0], cols[1], cols[2], cols[3], cols[4], id)
	if err != nil {
		return fmt.Errorf("update row %d: %w", rowNum, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, rowNum int) error {
	id, err := r.idAtRow(ctx, rowNum)
	if err != nil {
		return fmt.Errorf("delete row %d: %w", rowNum, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete row %d: %w", rowNum, err)
	}
	return nil
}

// idAtRow resolves a header-inclusive 1-based row number to a primary key:
// row 2 is the oldest entry.
func (r *Repository) idAtRow(ctx context.Context, rowNum int) (int64, error) {
	if rowNum < 2 {
		return 0, ledger.ErrRowOutOfRange
	}
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM entries ORDER BY id LIMIT 1 OFFSET ?`, rowNum-2).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ledger.ErrRowOutOfRange
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) EnsureRegistry(_ context.Context) error {
	// The migrations create the registry table; nothing left to do.
	return nil
}

func (r *Repository) Categories(ctx context.Context) (map[string]core.CategoryPair, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT primary_category, secondary_category, normalized_key FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.CategoryPair)
	for rows.Next() {
		var p core.CategoryPair
		var key string
		if err := rows.Scan(&p.Primary, &p.Secondary, &key); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out[key] = p
	}
	return out, rows.Err()
}

func (r *Repository) AddCategory(ctx context.Context, primary, secondary string) error {
	key := core.CategoryPair{Primary: primary, Secondary: secondary}.Key()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (primary_category, secondary_category, normalized_key)
		 VALUES (?, ?, ?)
		 ON CONFLICT(normalized_key) DO NOTHING`,
		primary, secondary, key)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) Provision(_ context.Context) (string, string, error) {
	abs, err := filepath.Abs(r.path)
	if err != nil {
		abs = r.path
	}
	return "sqlite:" + filepath.Base(r.path), "file://" + abs, nil
}

package ledger

import (
	"context"
	"errors"

	"kopilka/internal/core"
)

// ErrRowOutOfRange is returned by Update/Delete for a row number that does
// not point at a data row.
var ErrRowOutOfRange = errors.New("row number out of range")

// Ports for the ledger backends. Row numbers are 1-based and include the
// header row: the first data row is row 2.
type (
	// Store is the entry CRUD surface of the backing table.
	Store interface {
		Append(ctx context.Context, e core.Entry) error
		// Recent returns at most the last n data rows, header excluded,
		// oldest first, in storage order.
		Recent(ctx context.Context, n int) ([]core.Entry, error)
		Update(ctx context.Context, rowNum int, e core.Entry) error
		Delete(ctx context.Context, rowNum int) error
		// RowCount returns a fresh count of data rows, header excluded.
		// No caching: stale counts break the destructive offset arithmetic.
		RowCount(ctx context.Context) (int, error)
	}

	// Registry is the auxiliary category registry.
	Registry interface {
		EnsureRegistry(ctx context.Context) error
		// Categories returns all registered pairs keyed by normalized form.
		Categories(ctx context.Context) (map[string]core.CategoryPair, error)
		// AddCategory stores the literal pair text as typed.
		AddCategory(ctx context.Context, primary, secondary string) error
	}

	// Provisioner creates the backing table on first run.
	Provisioner interface {
		// Provision creates the table with its header row and the category
		// registry, and returns the new table's identifier and URL.
		Provision(ctx context.Context) (id string, url string, err error)
	}

	// Ledger is the full capability surface consumed by the conversation
	// state machine.
	Ledger interface {
		Store
		Registry
		Provisioner
	}
)

// Package memory is an in-memory ledger backend. It mirrors the row
// numbering of the sheet backend (header at row 1, first data row at row 2)
// so the offset arithmetic of the conversation flows can be tested against
// it directly.
package memory

import (
	"context"
	"fmt"
	"sync"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	entries []core.Entry
	pairs   map[string]core.CategoryPair
}

var _ ledger.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{pairs: make(map[string]core.CategoryPair)}
}

// Seed registers category pairs without going through confirmation.
func (s *Store) Seed(pairs ...core.CategoryPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pairs {
		s.pairs[p.Key()] = p
	}
}

func (s *Store) Append(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *Store) Recent(_ context.Context, n int) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]core.Entry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out, nil
}

func (s *Store) Update(_ context.Context, rowNum int, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := rowNum - 2
	if idx < 0 || idx >= len(s.entries) {
		return fmt.Errorf("update row %d: %w", rowNum, ledger.ErrRowOutOfRange)
	}
	s.entries[idx] = e
	return nil
}

func (s *Store) Delete(_ context.Context, rowNum int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := rowNum - 2
	if idx < 0 || idx >= len(s.entries) {
		return fmt.Errorf("delete row %d: %w", rowNum, ledger.ErrRowOutOfRange)
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return nil
}

func (s *Store) RowCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

func (s *Store) EnsureRegistry(_ context.Context) error {
	return nil
}

func (s *Store) Categories(_ context.Context) (map[string]core.CategoryPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]core.CategoryPair, len(s.pairs))
	for k, v := range s.pairs {
		out[k] = v
	}
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, primary, secondary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := core.CategoryPair{Primary: primary, Secondary: secondary}
	s.pairs[p.Key()] = p
	return nil
}

func (s *Store) Provision(_ context.Context) (string, string, error) {
	return "memory", "memory://kopilka", nil
}

// All returns a copy of every entry in storage order. Test helper.
func (s *Store) All() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

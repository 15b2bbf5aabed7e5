// Package memory keeps documents and folders in process memory. It backs the
// STORAGE=memory development mode and the service and resolver tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"docsgraph/internal/domain/repositories"
)

// Store holds both tables behind one lock so folder references can be checked.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]*documentRow
	folders map[string]*folderRow
	clock   func() time.Time
	last    time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string]*documentRow),
		folders: make(map[string]*folderRow),
		clock:   time.Now,
	}
}

// tick returns a timestamp strictly after every one it returned before, at the
// microsecond precision PostgreSQL stores. Caller holds the write lock.
func (s *Store) tick() time.Time {
	next := s.clock().UTC().Truncate(time.Microsecond)
	if !next.After(s.last) {
		next = s.last.Add(time.Microsecond)
	}
	s.last = next
	return next
}

// DocumentCount returns the number of stored documents.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

type transactionManager struct{}

// NewTransactionManager returns a TransactionManager that runs fn directly.
// The memory store has no rollback; each repository call is atomic on its own.
func NewTransactionManager() repositories.TransactionManager {
	return transactionManager{}
}

func (transactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// sortByCreated orders rows the way the postgres repositories do.
func sortByCreated[T any](rows []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := created(rows[i]), created(rows[j])
		if ci.Equal(cj) {
			return id(rows[i]) < id(rows[j])
		}
		return ci.Before(cj)
	})
}

func window[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

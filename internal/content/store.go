// Package content manages the versioned corpus of educational items.
//
// The Store is the single owner of corpus data. Reads (Get, List) are
// safe under concurrent query traffic; writes (Put) are serialized and
// bump an internal version counter so downstream consumers — the vector
// index in particular — can detect that a re-ingest is needed.
package content

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Store holds the educational corpus. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	items   map[string]Item
	version uint64
	logger  *slog.Logger
}

// New creates an empty Store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		items:  make(map[string]Item),
		logger: logger,
	}
}

// NewSeeded creates a Store preloaded with the built-in corpus.
func NewSeeded(logger *slog.Logger) *Store {
	s := New(logger)
	for _, it := range seedItems() {
		// Seed items are static and validated by tests; a failure here
		// is a programming error, not a runtime condition.
		if err := s.Put(it); err != nil {
			panic(fmt.Sprintf("content: invalid seed item %q: %v", it.ID, err))
		}
	}
	return s
}

// Put adds or updates an item. The corpus version is bumped only when
// the stored value actually changes, so repeated Puts of identical
// items are idempotent with respect to Version.
func (s *Store) Put(item Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validating item %q: %w", item.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[item.ID]; ok && existing == item {
		return nil
	}

	s.items[item.ID] = item
	s.version++
	s.logger.Debug("stored content item",
		"id", item.ID, "subject", item.Subject, "version", s.version)
	return nil
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// List returns all items ordered by id ascending. The slice is a copy;
// callers may retain it across concurrent writes.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListBySubject returns items for one subject, ordered by id ascending.
func (s *Store) ListBySubject(subject string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Item
	for _, it := range s.items {
		if it.Subject == subject {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subjects returns the distinct subjects present in the corpus, sorted.
func (s *Store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, it := range s.items {
		seen[it.Subject] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sub := range seen {
		out = append(out, sub)
	}
	sort.Strings(out)
	return out
}

// Version returns the current corpus version. It increases monotonically
// with every effective write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of items in the corpus.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Package deliverylog keeps the in-memory record of every webhook delivery.
package deliverylog

import (
	"sync"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

// Store is an append-only delivery log, safe for concurrent use
type Store struct {
	mu      sync.RWMutex
	entries map[string][]*model.DeliveryLogEntry
	last    *model.DeliveryLogEntry
	closed  bool
}

// New creates an empty Store
func New() *Store {
	return &Store{
		entries: make(map[string][]*model.DeliveryLogEntry),
	}
}

// Append records entry. Entries must not be modified after they are appended.
func (s *Store) Append(entry *model.DeliveryLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	s.entries[entry.Event] = append(s.entries[entry.Event], entry)
	s.last = entry
	return nil
}

// Entries returns the entries recorded for an event type, oldest first
func (s *Store) Entries(event string) []*model.DeliveryLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.entries[event]
	out := make([]*model.DeliveryLogEntry, len(src))
	copy(out, src)
	return out
}

// Count returns the number of deliveries recorded for an event type
func (s *Store) Count(event string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[event])
}

// LastPayload returns the raw body of the most recent delivery, nil if none
func (s *Store) LastPayload() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil
	}
	return s.last.Payload
}

// Summary returns per-event counts and the most recent entry
func (s *Store) Summary() *model.DeliverySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &model.DeliverySummary{
		Counts: make(map[string]int, len(s.entries)),
		Last:   s.last,
	}
	for event, entries := range s.entries {
		summary.Counts[event] = len(entries)
	}
	return summary
}

// Close stops the store from accepting entries. Recorded entries stay readable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

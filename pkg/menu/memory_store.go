package menu

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory menu store. A read-write mutex guards every
// read-modify-write sequence so concurrent requests cannot lose updates or
// observe torn reads.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemoryStore creates an in-memory store seeded with the given items.
func NewMemoryStore(seed []Item) *MemoryStore {
	items := make([]Item, len(seed))
	copy(items, seed)
	return &MemoryStore{items: items}
}

// List returns all items in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Get returns the item with the given id, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id int) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return Item{}, ErrNotFound
}

// Create appends a new item with ID = current count + 1.
func (s *MemoryStore) Create(_ context.Context, name string, price float64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{
		ID:    len(s.items) + 1,
		Name:  name,
		Price: price,
	}
	s.items = append(s.items, item)
	return item, nil
}

// Update merges the supplied fields over the existing item in place.
func (s *MemoryStore) Update(_ context.Context, id int, upd ItemUpdate) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if upd.Name != nil {
			s.items[i].Name = *upd.Name
		}
		if upd.Price != nil {
			s.items[i].Price = *upd.Price
		}
		return s.items[i], nil
	}
	return Item{}, ErrNotFound
}

// Delete removes all items with the given id. Absent ids remove nothing
// and return no error.
func (s *MemoryStore) Delete(_ context.Context, id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if item.ID == id {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return removed, nil
}

// Count returns the current number of items.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

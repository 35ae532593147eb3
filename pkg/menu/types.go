// Package menu provides the coffee menu store: an insertion-ordered
// collection of menu items with in-memory and SQLite-backed
// implementations.
package menu

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a menu item does not exist.
var ErrNotFound = errors.New("coffee not found")

// Item is a single entry on the coffee menu.
type Item struct {
	// ID is the positive identifier assigned at creation as count+1.
	// IDs are not reused after deletion, so they are not guaranteed to be
	// contiguous once items have been deleted.
	ID int `json:"id"`

	// Name is the non-empty display name.
	Name string `json:"name"`

	// Price is the non-negative item price.
	Price float64 `json:"price"`
}

// ItemUpdate carries the fields of a partial update. A nil field keeps the
// item's existing value.
type ItemUpdate struct {
	Name  *string
	Price *float64
}

// Store is the menu storage contract. Implementations must be safe for
// concurrent use: the original service mutated a shared list with no
// locking, which a reimplementation closes rather than reproduces.
type Store interface {
	// List returns all items in insertion order.
	List(ctx context.Context) ([]Item, error)

	// Get returns the item with the given id, or ErrNotFound.
	Get(ctx context.Context, id int) (Item, error)

	// Create appends a new item, assigning ID = current count + 1.
	Create(ctx context.Context, name string, price float64) (Item, error)

	// Update merges the supplied fields over the existing item and returns
	// the result, or ErrNotFound.
	Update(ctx context.Context, id int, upd ItemUpdate) (Item, error)

	// Delete removes all items with the given id and reports how many were
	// removed. Deleting an absent id is not an error.
	Delete(ctx context.Context, id int) (int, error)

	// Count returns the current number of items.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// DefaultMenu returns the seed menu the service starts with.
func DefaultMenu() []Item {
	return []Item{
		{ID: 1, Name: "Espresso", Price: 2.5},
		{ID: 2, Name: "Latte", Price: 3.5},
		{ID: 3, Name: "Cappuccino", Price: 3.0},
		{ID: 4, Name: "Chai", Price: 1.5},
	}
}

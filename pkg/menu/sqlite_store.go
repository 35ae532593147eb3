package menu

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite, giving the menu
// durability across restarts. Items are ordered by rowid, which preserves
// insertion order the same way the in-memory slice does.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// SQLiteConfig holds SQLite store configuration.
type SQLiteConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Migrate runs database migrations from the embedded filesystem.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Seed inserts the given items if the table is empty.
func (s *SQLiteStore) Seed(ctx context.Context, items []Item) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO menu_items (id, name, price) VALUES (?, ?, ?)`,
			item.ID, item.Name, item.Price,
		); err != nil {
			return fmt.Errorf("failed to seed menu item %d: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// List returns all items in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price FROM menu_items ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}

	return items, nil
}

// Get returns the item with the given id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id int) (Item, error) {
	var item Item
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, price FROM menu_items WHERE id = ? ORDER BY rowid LIMIT 1`,
		id,
	).Scan(&item.ID, &item.Name, &item.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("failed to get menu item %d: %w", id, err)
	}
	return item, nil
}

// Create inserts a new item with ID = current count + 1. The count and
// insert run in one immediate transaction so concurrent creations cannot
// both read the same count.
func (s *SQLiteStore) Create(ctx context.Context, name string, price float64) (Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&count); err != nil {
		return Item{}, fmt.Errorf("failed to count menu items: %w", err)
	}

	item := Item{
		ID:    count + 1,
		Name:  name,
		Price: price,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO menu_items (id, name, price) VALUES (?, ?, ?)`,
		item.ID, item.Name, item.Price,
	); err != nil {
		return Item{}, fmt.Errorf("failed to insert menu item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("failed to commit menu item: %w", err)
	}
	return item, nil
}

// Update merges the supplied fields over the existing item.
func (s *SQLiteStore) Update(ctx context.Context, id int, upd ItemUpdate) (Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var item Item
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, price FROM menu_items WHERE id = ? ORDER BY rowid LIMIT 1`,
		id,
	).Scan(&item.ID, &item.Name, &item.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("failed to get menu item %d: %w", id, err)
	}

	if upd.Name != nil {
		item.Name = *upd.Name
	}
	if upd.Price != nil {
		item.Price = *upd.Price
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE menu_items SET name = ?, price = ? WHERE id = ?`,
		item.Name, item.Price, id,
	); err != nil {
		return Item{}, fmt.Errorf("failed to update menu item %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("failed to commit menu item update: %w", err)
	}
	return item, nil
}

// Delete removes all items with the given id. Absent ids remove nothing
// and return no error.
func (s *SQLiteStore) Delete(ctx context.Context, id int) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete menu item %d: %w", id, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(removed), nil
}

// Count returns the current number of items.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return count, nil
}

// HealthCheck verifies the database connection is alive.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

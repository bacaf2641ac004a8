package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sqlx.DB
}

// NewStore connects to Postgres with a fixed-size pool. Callers queue on the
// pool rather than fail when it is exhausted; maxConns bounds concurrent
// database sessions.
func NewStore(databaseURL string, maxConns int) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// GetProductByID retrieves a catalog product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, `
		SELECT p.id, p.category_id, c.name AS category, p.name, p.description,
		       p.price, p.image_url, p.available
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetAvailableProducts retrieves the available catalog, joined with category
// names, for the customer-facing listing.
func (s *Store) GetAvailableProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT p.id, p.category_id, c.name AS category, p.name, p.description,
		       p.price, p.image_url, p.available
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.available
		ORDER BY p.id`)
	return products, err
}

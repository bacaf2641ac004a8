package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/models"

	"github.com/lib/pq"
)

// CreateUser inserts a new customer account. A duplicate email surfaces as
// ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		user.Name, user.Email, user.PasswordHash, user.Phone).
		Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", user.Email, errs.ErrConflict)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetResetToken stores a password-recovery token with its expiry.
func (s *Store) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET reset_token = $1, reset_token_exp = $2 WHERE id = $3",
		token, expiresAt, userID)
	return err
}

// ConsumeResetToken rehashes the password and clears the stored token, but
// only when the presented token is still the stored, unexpired one. Returns
// ErrValidation when the token was already used or has expired.
func (s *Store) ConsumeResetToken(ctx context.Context, userID int64, token, newHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_exp = NULL
		WHERE id = $2 AND reset_token = $3 AND reset_token_exp > NOW()`,
		newHash, userID, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reset token rejected: %w", errs.ErrValidation)
	}
	return nil
}

// GetAdminByEmail retrieves an admin account by email.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.GetContext(ctx, &admin, "SELECT * FROM admins WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("admin %s: %w", email, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// CreateAddress inserts a user address. Marking it primary clears the flag
// on the user's other rows first; at most one primary address per user.
func (s *Store) CreateAddress(ctx context.Context, addr *models.Address) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if addr.Primary && addr.UserID != nil {
		_, err = tx.ExecContext(ctx,
			"UPDATE addresses SET is_primary = FALSE WHERE user_id = $1", *addr.UserID)
		if err != nil {
			return fmt.Errorf("failed to clear primary flag: %w", err)
		}
	}

	err = tx.GetContext(ctx, &addr.ID, `
		INSERT INTO addresses (user_id, street, number, complement, neighborhood, city, state, postal_code, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		addr.UserID, addr.Street, addr.Number, addr.Complement,
		addr.Neighborhood, addr.City, addr.State, addr.PostalCode, addr.Primary)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}

	return tx.Commit()
}

// GetAddressByID retrieves a single address.
func (s *Store) GetAddressByID(ctx context.Context, id int64) (*models.Address, error) {
	var addr models.Address
	err := s.db.GetContext(ctx, &addr, "SELECT * FROM addresses WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("address %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// ListAddressesByUser retrieves all addresses for a user.
func (s *Store) ListAddressesByUser(ctx context.Context, userID int64) ([]models.Address, error) {
	var addrs []models.Address
	err := s.db.SelectContext(ctx, &addrs,
		"SELECT * FROM addresses WHERE user_id = $1 ORDER BY id", userID)
	return addrs, err
}

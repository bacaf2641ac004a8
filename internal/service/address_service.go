package service

import (
	"context"
	"fmt"
	"strings"

	"orders-api/internal/errs"
	"orders-api/internal/models"
)

// AddressStore is the persistence surface for user addresses.
type AddressStore interface {
	CreateAddress(ctx context.Context, addr *models.Address) error
	ListAddressesByUser(ctx context.Context, userID int64) ([]models.Address, error)
}

// AddressService manages a user's saved delivery addresses.
type AddressService struct {
	store AddressStore
}

// NewAddressService creates a new address service
func NewAddressService(store AddressStore) *AddressService {
	return &AddressService{store: store}
}

// CreateAddress saves a profile address for a user. Setting primary demotes
// the user's other addresses; at most one primary address per user.
func (s *AddressService) CreateAddress(ctx context.Context, userID int64, req *AddressRequest, primary bool) (*models.Address, error) {
	if strings.TrimSpace(req.Street) == "" {
		return nil, fmt.Errorf("street is required: %w", errs.ErrValidation)
	}

	addr := &models.Address{
		UserID:       &userID,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Primary:      primary,
	}
	if err := s.store.CreateAddress(ctx, addr); err != nil {
		return nil, fmt.Errorf("failed to create address: %v: %w", err, errs.ErrPersistence)
	}
	return addr, nil
}

// ListAddresses returns a user's saved addresses.
func (s *AddressService) ListAddresses(ctx context.Context, userID int64) ([]models.Address, error) {
	return s.store.ListAddressesByUser(ctx, userID)
}

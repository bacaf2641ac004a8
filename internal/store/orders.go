package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orders-api/internal/errs"
	"orders-api/internal/models"
)

// CreateOrderBundle persists an order, its line items and an optional inline
// address as one atomic unit. Either everything commits or nothing is
// visible. On success the order (and address, if any) carry their new IDs.
func (s *Store) CreateOrderBundle(ctx context.Context, order *models.Order, items []models.OrderItem, addr *models.Address) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if addr != nil {
		err = tx.GetContext(ctx, &addr.ID, `
			INSERT INTO addresses (user_id, street, number, complement, neighborhood, city, state, postal_code, is_primary)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
			RETURNING id`,
			addr.UserID, addr.Street, addr.Number, addr.Complement,
			addr.Neighborhood, addr.City, addr.State, addr.PostalCode)
		if err != nil {
			return fmt.Errorf("failed to insert address: %w", err)
		}
		order.AddressID = &addr.ID
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders (owner_id, address_id, payment_method, total, note, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		order.OwnerID, order.AddressID, order.PaymentMethod, order.Total,
		order.Note, order.Status).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.GetContext(ctx, &items[i].ID, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			items[i].OrderID, items[i].ProductID, items[i].Name,
			items[i].Price, items[i].Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// orderRow carries an order joined with its owner's contact fields.
type orderRow struct {
	models.Order
	OwnerName  *string `db:"owner_name"`
	OwnerEmail *string `db:"owner_email"`
	OwnerPhone *string `db:"owner_phone"`
}

const orderWithOwnerQuery = `
	SELECT o.id, o.owner_id, o.address_id, o.payment_method, o.total, o.note,
	       o.status, o.created_at,
	       u.name AS owner_name, u.email AS owner_email, u.phone AS owner_phone
	FROM orders o
	LEFT JOIN users u ON o.owner_id = u.id`

// GetOrderDetail composes an order with its items, address, first payment and
// owner contact. Any of the joined relations may be absent.
func (s *Store) GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, orderWithOwnerQuery+" WHERE o.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.composeDetail(ctx, &row)
}

// ListOrdersByOwner retrieves a user's orders, newest first, items attached.
func (s *Store) ListOrdersByOwner(ctx context.Context, ownerID int64) ([]models.OrderDetail, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows,
		orderWithOwnerQuery+" WHERE o.owner_id = $1 ORDER BY o.created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	return s.composeAll(ctx, rows)
}

// ListAllOrders retrieves every order for the admin panel, newest first.
func (s *Store) ListAllOrders(ctx context.Context) ([]models.OrderDetail, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, orderWithOwnerQuery+" ORDER BY o.created_at DESC")
	if err != nil {
		return nil, err
	}
	return s.composeAll(ctx, rows)
}

func (s *Store) composeAll(ctx context.Context, rows []orderRow) ([]models.OrderDetail, error) {
	details := make([]models.OrderDetail, 0, len(rows))
	for i := range rows {
		d, err := s.composeDetail(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

func (s *Store) composeDetail(ctx context.Context, row *orderRow) (*models.OrderDetail, error) {
	detail := &models.OrderDetail{
		Order:      row.Order,
		OwnerName:  row.OwnerName,
		OwnerEmail: row.OwnerEmail,
		OwnerPhone: row.OwnerPhone,
	}

	items, err := s.GetOrderItems(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	detail.Items = items

	if row.AddressID != nil {
		addr, err := s.GetAddressByID(ctx, *row.AddressID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		detail.Address = addr
	}

	payment, err := s.GetFirstPaymentByOrderID(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	detail.Payment = payment

	return detail, nil
}

// GetOrderByID retrieves a bare order row.
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves all line items for an order.
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// UpdateOrderStatus writes a new lifecycle status. The caller has already
// validated the value against the enum and the transition graph.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
	}
	return nil
}

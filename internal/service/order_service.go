package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/models"
	"orders-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence surface order assembly depends on.
type OrderStore interface {
	CreateOrderBundle(ctx context.Context, order *models.Order, items []models.OrderItem, addr *models.Address) error
	GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error)
	ListOrdersByOwner(ctx context.Context, ownerID int64) ([]models.OrderDetail, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// Publisher publishes order lifecycle events. Publish failures are logged,
// never surfaced to the caller.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishPaymentRecorded(ctx context.Context, event *models.PaymentRecordedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// OrderService handles order assembly, retrieval and lifecycle transitions.
type OrderService struct {
	store          OrderStore
	eventPublisher Publisher
	priceTolerance float64
	logger         *zap.Logger
}

// NewOrderService creates a new order service. priceTolerance is the maximum
// relative deviation allowed between a submitted item price and the current
// catalog price for catalog-linked items.
func NewOrderService(store OrderStore, eventPublisher Publisher, priceTolerance float64) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		priceTolerance: priceTolerance,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest is the submitted cart plus delivery details.
type CreateOrderRequest struct {
	OwnerID       *int64             `json:"ownerId"`
	PaymentMethod string             `json:"paymentMethod"`
	Total         float64            `json:"total"`
	Note          *string            `json:"note"`
	Items         []OrderItemRequest `json:"items"`
	Address       *AddressRequest    `json:"address"`
}

// OrderItemRequest is one cart entry. ProductID links the item to the
// catalog for re-price validation; without it the item is ad-hoc.
type OrderItemRequest struct {
	ProductID *int64  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// AddressRequest is the optional inline delivery address.
type AddressRequest struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postalCode"`
}

// CreateOrder validates the cart and persists address, order and line items
// as one atomic unit. Either all three exist afterwards or none do.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (int64, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := s.validateCart(ctx, req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_cart").Inc()
		return 0, err
	}

	order := &models.Order{
		OwnerID:       req.OwnerID,
		PaymentMethod: req.PaymentMethod,
		Total:         req.Total,
		Note:          req.Note,
		Status:        models.OrderStatusPending,
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	// A payload without a street is not an error: the order simply ships
	// without a stored address.
	var addr *models.Address
	if req.Address != nil && strings.TrimSpace(req.Address.Street) != "" {
		addr = &models.Address{
			UserID:       req.OwnerID,
			Street:       req.Address.Street,
			Number:       req.Address.Number,
			Complement:   req.Address.Complement,
			Neighborhood: req.Address.Neighborhood,
			City:         req.Address.City,
			State:        req.Address.State,
			PostalCode:   req.Address.PostalCode,
		}
	}

	if err := s.store.CreateOrderBundle(ctx, order, items, addr); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return 0, fmt.Errorf("failed to create order: %v: %w", err, errs.ErrPersistence)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Float64("total", order.Total))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		OwnerID:       order.OwnerID,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Items:         items,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order.ID, nil
}

// validateCart enforces the assembly contract: a non-empty cart of positive
// quantities whose item sum equals the submitted total, compared in cents.
func (s *OrderService) validateCart(ctx context.Context, req *CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("order has no items: %w", errs.ErrValidation)
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return fmt.Errorf("unknown payment method %q: %w", req.PaymentMethod, errs.ErrValidation)
	}

	var sumCents int64
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("item %d has no name: %w", i, errs.ErrValidation)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item %q has quantity %d: %w", item.Name, item.Quantity, errs.ErrValidation)
		}
		if item.Price < 0 {
			return fmt.Errorf("item %q has negative price: %w", item.Name, errs.ErrValidation)
		}
		if err := s.checkCatalogPrice(ctx, item); err != nil {
			return err
		}
		sumCents += models.Cents(item.Price) * int64(item.Quantity)
	}

	if sumCents != models.Cents(req.Total) {
		return fmt.Errorf("total %.2f does not match item sum %.2f: %w",
			req.Total, float64(sumCents)/100, errs.ErrValidation)
	}
	return nil
}

// checkCatalogPrice validates a catalog-linked item against the current
// catalog price. Items are still persisted with the submitted snapshot, but
// a snapshot drifting beyond the tolerance is rejected up front.
func (s *OrderService) checkCatalogPrice(ctx context.Context, item OrderItemRequest) error {
	if item.ProductID == nil {
		return nil
	}

	product, err := s.store.GetProductByID(ctx, *item.ProductID)
	if err != nil {
		return fmt.Errorf("item %q references unknown product %d: %w",
			item.Name, *item.ProductID, errs.ErrValidation)
	}

	if product.Price == 0 {
		if models.Cents(item.Price) != 0 {
			return fmt.Errorf("item %q price deviates from catalog: %w", item.Name, errs.ErrValidation)
		}
		return nil
	}
	if math.Abs(item.Price-product.Price)/product.Price > s.priceTolerance {
		return fmt.Errorf("item %q price %.2f deviates from catalog price %.2f: %w",
			item.Name, item.Price, product.Price, errs.ErrValidation)
	}
	return nil
}

// GetOrder retrieves the composed order detail.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.OrderDetail, error) {
	return s.store.GetOrderDetail(ctx, orderID)
}

// ListOrdersByOwner retrieves a user's orders with items, newest first.
func (s *OrderService) ListOrdersByOwner(ctx context.Context, ownerID int64) ([]models.OrderDetail, error) {
	return s.store.ListOrdersByOwner(ctx, ownerID)
}

// UpdateStatus applies an administrative status change. The value must be
// one of the six enum values; the transition must follow the lifecycle graph
// unless force is set, which skips the graph (never the enum check) for
// staff corrections.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus, force bool) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("unknown status %q: %w", status, errs.ErrValidation)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !force && !models.CanTransition(order.Status, status) {
		return fmt.Errorf("cannot move order from %q to %q: %w",
			order.Status, status, errs.ErrValidation)
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("failed to update order status: %v: %w", err, errs.ErrPersistence)
	}

	util.OrderStatusChangesTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)),
		zap.Bool("force", force))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		From:    order.Status,
		To:      status,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return nil
}

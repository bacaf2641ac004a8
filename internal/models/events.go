package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypePaymentRecorded    = "PAYMENT_RECORDED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after an order bundle commits
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64       `json:"order_id"`
	OwnerID       *int64      `json:"owner_id,omitempty"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	Items         []OrderItem `json:"items"`
}

// PaymentRecordedEvent published after reconciliation persists an outcome
type PaymentRecordedEvent struct {
	BaseEvent
	OrderID      int64         `json:"order_id"`
	GatewayTxnID string        `json:"gateway_txn_id"`
	Status       PaymentStatus `json:"status"`
	Amount       float64       `json:"amount"`
}

// OrderStatusChangedEvent published on every order status write
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64       `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

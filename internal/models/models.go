package models

import (
	"math"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusInPreparation  OrderStatus = "in_preparation"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// orderStatusRank orders the forward progression of the lifecycle.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:        0,
	OrderStatusConfirmed:      1,
	OrderStatusInPreparation:  2,
	OrderStatusOutForDelivery: 3,
	OrderStatusDelivered:      4,
}

// ValidOrderStatus reports whether s is one of the six enum values.
func ValidOrderStatus(s OrderStatus) bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// Terminal reports whether s admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether moving from -> to follows the declared
// lifecycle: one step forward at a time, with cancelled reachable from any
// non-terminal state. Administrative corrections that need to jump the graph
// go through the force path instead.
func CanTransition(from, to OrderStatus) bool {
	if !ValidOrderStatus(from) || !ValidOrderStatus(to) {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return orderStatusRank[to] == orderStatusRank[from]+1
}

// PaymentStatus is the gateway-reported outcome, distinct from OrderStatus.
type PaymentStatus string

const (
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Payment method tags accepted on order submission.
const (
	PaymentMethodCard = "card"
	PaymentMethodPix  = "pix"
	PaymentMethodCash = "cash"
)

// ValidPaymentMethod reports whether tag is a known payment method.
func ValidPaymentMethod(tag string) bool {
	return tag == PaymentMethodCard || tag == PaymentMethodPix || tag == PaymentMethodCash
}

// Cents converts a two-decimal amount to integer minor units, rounding rather
// than truncating so equality checks and gateway charges never drift a cent.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Order is a customer's placed purchase request. Total is snapshotted at
// creation and never recomputed from items afterwards.
type Order struct {
	ID            int64       `db:"id" json:"id"`
	OwnerID       *int64      `db:"owner_id" json:"ownerId,omitempty"`
	AddressID     *int64      `db:"address_id" json:"addressId,omitempty"`
	PaymentMethod string      `db:"payment_method" json:"paymentMethod"`
	Total         float64     `db:"total" json:"total"`
	Note          *string     `db:"note" json:"note,omitempty"`
	Status        OrderStatus `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

// OrderItem is one product entry captured at order time. ProductID is
// nullable: items may be ad-hoc, and historical orders never chase later
// catalog edits.
type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"orderId"`
	ProductID *int64  `db:"product_id" json:"productId,omitempty"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
}

// Address is a delivery address, owned by a user or created inline for a
// single order (owner nullable, never primary).
type Address struct {
	ID           int64   `db:"id" json:"id"`
	UserID       *int64  `db:"user_id" json:"userId,omitempty"`
	Street       string  `db:"street" json:"street"`
	Number       string  `db:"number" json:"number"`
	Complement   *string `db:"complement" json:"complement,omitempty"`
	Neighborhood string  `db:"neighborhood" json:"neighborhood"`
	City         string  `db:"city" json:"city"`
	State        string  `db:"state" json:"state"`
	PostalCode   string  `db:"postal_code" json:"postalCode"`
	Primary      bool    `db:"is_primary" json:"primary"`
}

// Payment records a completed gateway charge attempt against an order.
// (order_id, gateway_txn_id) is the natural key; reconciliation upserts on it.
type Payment struct {
	ID           int64         `db:"id" json:"id"`
	OrderID      int64         `db:"order_id" json:"orderId"`
	Gateway      string        `db:"gateway" json:"gateway"`
	GatewayTxnID string        `db:"gateway_txn_id" json:"gatewayTransactionId"`
	Status       PaymentStatus `db:"status" json:"status"`
	Amount       float64       `db:"amount" json:"amount"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
}

// OrderDetail is the read composition returned by order retrieval: the order
// merged with its items, address, first payment and owner contact. Any of the
// joined relations may be absent.
type OrderDetail struct {
	Order
	Items      []OrderItem `json:"items"`
	Address    *Address    `json:"address"`
	Payment    *Payment    `json:"payment"`
	OwnerName  *string     `json:"ownerName,omitempty"`
	OwnerEmail *string     `json:"ownerEmail,omitempty"`
	OwnerPhone *string     `json:"ownerPhone,omitempty"`
}

// User is a registered customer account.
type User struct {
	ID            int64      `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	ResetToken    *string    `db:"reset_token" json:"-"`
	ResetTokenExp *time.Time `db:"reset_token_exp" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// Admin is a staff account for the administrative surface.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Product is a catalog entry, read-only from this service's perspective.
type Product struct {
	ID          int64   `db:"id" json:"id"`
	CategoryID  *int64  `db:"category_id" json:"categoryId,omitempty"`
	Category    *string `db:"category" json:"category,omitempty"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	Price       float64 `db:"price" json:"price"`
	ImageURL    *string `db:"image_url" json:"imageUrl,omitempty"`
	Available   bool    `db:"available" json:"available"`
}

// ReportTotals aggregates the order book for the admin report.
type ReportTotals struct {
	TotalOrders   int64   `db:"total_orders" json:"totalOrders"`
	Revenue       float64 `db:"revenue" json:"revenue"`
	Delivered     int64   `db:"delivered" json:"delivered"`
	Cancelled     int64   `db:"cancelled" json:"cancelled"`
	Pending       int64   `db:"pending" json:"pending"`
	InPreparation int64   `db:"in_preparation" json:"inPreparation"`
}

// ReportDay is one row of the per-day breakdown.
type ReportDay struct {
	Day     string  `db:"day" json:"day"`
	Orders  int64   `db:"orders" json:"orders"`
	Revenue float64 `db:"revenue" json:"revenue"`
}

// AngelaMos | 2026
// entity.go

package order

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Order snapshots the cart at checkout: names and unit prices are copied in
// so later catalog edits never rewrite history. Total is computed once at
// creation and never recomputed.
type Order struct {
	ID             string      `bson:"_id"`
	AccountID      string      `bson:"account_id"`
	Items          []OrderItem `bson:"items"`
	Total          float64     `bson:"total"`
	Status         string      `bson:"status"`
	IdempotencyKey string      `bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time   `bson:"created_at"`
	UpdatedAt      time.Time   `bson:"updated_at"`
	PaidAt         *time.Time  `bson:"paid_at,omitempty"`
}

type OrderItem struct {
	ProductID string  `bson:"product_id"`
	Name      string  `bson:"name"`
	UnitPrice float64 `bson:"unit_price"`
	Quantity  int     `bson:"quantity"`
	Subtotal  float64 `bson:"subtotal"`
}

func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

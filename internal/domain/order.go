package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusPlaced is the only status an order ever carries; orders are
// immutable once created.
const OrderStatusPlaced = "placed"

// Order is an immutable record of a completed checkout. Lines snapshot the
// product name and unit price at purchase time, decoupled from later
// catalog changes.
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Lines       []OrderLine `json:"lines"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Status      string      `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// OrderLine is one purchased product within an order
type OrderLine struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog entry with depletion-driven discounting.
// Quantity only decreases after creation; InitialQuantity and
// InitialDiscountRate are fixed when the entry is created.
type Product struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Description         string    `json:"description" db:"description"`
	BusinessLineID      uuid.UUID `json:"business_line_id" db:"business_line_id"`
	BasePrice           float64   `json:"base_price" db:"base_price"`
	Quantity            int       `json:"quantity" db:"quantity"`
	InitialQuantity     int       `json:"initial_quantity" db:"initial_quantity"`
	InitialDiscountRate float64   `json:"initial_discount_rate" db:"initial_discount_rate"`
	CurrentDiscountRate float64   `json:"current_discount_rate" db:"current_discount_rate"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// BusinessLine represents a catalog segment that products and customers belong to
type BusinessLine struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QualityCheckRecord es el resultado de inspección vigente para un producto.
// Una nueva presentación sobreescribe la anterior (no se versiona).
type QualityCheckRecord struct {
	ID              string
	ProductID       string
	Status          string // pending, approved, rejected
	DamagedQuantity decimal.Decimal
	Remarks         string
	InspectorID     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

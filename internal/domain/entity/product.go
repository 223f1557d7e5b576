package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de inspección de calidad de un producto.
const (
	InspectionPending  = "pending"
	InspectionApproved = "approved"
	InspectionRejected = "rejected"
)

// Product representa un artículo del catálogo. El catálogo (CRUD) es un colaborador
// externo: el motor de inventario solo lee el precio canónico y lo muta cuando una
// aprobación de manifiesto reprecia el catálogo (opción explícita).
type Product struct {
	ID                string
	SKU               string // código único
	Name              string
	UnitPrice         decimal.Decimal // precio base canónico
	Currency          string
	Quantity          decimal.Decimal // cantidad declarada al ingreso
	AvailableQuantity decimal.Decimal // cantidad tras control de calidad
	InspectionStatus  string          // pending, approved, rejected
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

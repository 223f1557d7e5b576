package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice representa una venta (salida de inventario) ligada a una ubicación.
// Los totales se derivan de las líneas vía el calculador de valuación.
type Invoice struct {
	ID            string
	Number        string // consecutivo, único
	LocationID    string
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	VATTotal      decimal.Decimal
	TaxAmount     decimal.Decimal // impuesto plano opcional
	NetAmount     decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceItem es una línea de factura con su total calculado.
type InvoiceItem struct {
	ID              string
	InvoiceID       string
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	VATPercent      decimal.Decimal
	Total           decimal.Decimal
}

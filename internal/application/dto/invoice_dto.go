package dto

import "github.com/shopspring/decimal"

// InvoiceItemRequest línea de factura. Si UnitPrice es cero se toma el precio
// canónico del producto.
type InvoiceItemRequest struct {
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	VATPercent      decimal.Decimal `json:"vat_percent"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	LocationID string               `json:"location_id"`
	Number     string               `json:"number,omitempty"`
	TaxAmount  *decimal.Decimal     `json:"tax_amount,omitempty"`
	Items      []InvoiceItemRequest `json:"items"`
}

// EditInvoiceRequest body para PUT /api/invoices/:id (reemplazo de líneas).
type EditInvoiceRequest struct {
	TaxAmount *decimal.Decimal     `json:"tax_amount,omitempty"`
	Items     []InvoiceItemRequest `json:"items"`
}

// InvoiceItemResponse línea persistida con su total.
type InvoiceItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	VATPercent      decimal.Decimal `json:"vat_percent"`
	Total           decimal.Decimal `json:"total"`
}

// InvoiceResponse factura con totales y líneas.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	LocationID    string                `json:"location_id"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	DiscountTotal decimal.Decimal       `json:"discount_total"`
	VATTotal      decimal.Decimal       `json:"vat_total"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	NetAmount     decimal.Decimal       `json:"net_amount"`
	Items         []InvoiceItemResponse `json:"items"`
}

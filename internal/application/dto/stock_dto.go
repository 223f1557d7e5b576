package dto

import "github.com/shopspring/decimal"

// AdjustStockRequest body para PUT /api/stock/adjust (override manual absoluto).
type AdjustStockRequest struct {
	ProductID   string          `json:"product_id"`
	LocationID  string          `json:"location_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// UpsertStockPricingRequest body para PUT /api/stock/pricing.
type UpsertStockPricingRequest struct {
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	Currency      string          `json:"currency"`
}

// StockEntryResponse entrada del libro de stock.
type StockEntryResponse struct {
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	ManifestID    string          `json:"manifest_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	Currency      string          `json:"currency,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LastUpdatedBy string          `json:"last_updated_by,omitempty"`
}

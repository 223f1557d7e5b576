package dto

import "github.com/shopspring/decimal"

// SubmitQualityCheckRequest body para POST /api/quality-checks.
type SubmitQualityCheckRequest struct {
	ProductID       string           `json:"product_id"`
	Status          string           `json:"status"` // pending, approved, rejected
	DamagedQuantity *decimal.Decimal `json:"damaged_quantity,omitempty"`
	Remarks         string           `json:"remarks,omitempty"`
}

// QualityCheckResponse registro de control de calidad vigente.
type QualityCheckResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Status            string          `json:"status"`
	DamagedQuantity   decimal.Decimal `json:"damaged_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Remarks           string          `json:"remarks,omitempty"`
	InspectorID       string          `json:"inspector_id"`
}

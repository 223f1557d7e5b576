package dto

import "github.com/shopspring/decimal"

// ManifestItemRequest línea de manifiesto (producto y cantidad).
type ManifestItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateManifestRequest body para POST /api/manifests.
type CreateManifestRequest struct {
	SourceLocationID string                `json:"source_location_id"`
	BoxNumber        string                `json:"box_number,omitempty"`
	Items            []ManifestItemRequest `json:"items"`
}

// EditManifestRequest body para PUT /api/manifests/:id (reemplazo de líneas).
type EditManifestRequest struct {
	Items []ManifestItemRequest `json:"items"`
}

// ApproveManifestRequest body para POST /api/manifests/:id/approve.
type ApproveManifestRequest struct {
	DestinationLocationID string           `json:"destination_location_id"`
	Currency              string           `json:"currency,omitempty"`
	ExchangeRate          *decimal.Decimal `json:"exchange_rate,omitempty"`
}

// ManifestItemResponse línea persistida.
type ManifestItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ManifestResponse manifiesto con sus líneas.
type ManifestResponse struct {
	ID                    string                 `json:"id"`
	BoxNumber             string                 `json:"box_number"`
	SourceLocationID      string                 `json:"source_location_id"`
	DestinationLocationID string                 `json:"destination_location_id,omitempty"`
	Currency              string                 `json:"currency,omitempty"`
	ExchangeRate          decimal.Decimal        `json:"exchange_rate"`
	Status                string                 `json:"status"`
	ApprovedBy            string                 `json:"approved_by,omitempty"`
	Items                 []ManifestItemResponse `json:"items"`
}

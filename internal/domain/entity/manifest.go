package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un manifiesto de traslado. La transición draft -> approved es de una
// sola vía: aprobar un manifiesto ya aprobado debe fallar, no re-aplicar.
const (
	ManifestStatusDraft    = "draft"
	ManifestStatusApproved = "approved"
)

// TransferManifest agrupa líneas de traslado desde una ubicación origen hacia un
// destino (opcional hasta la aprobación). Mientras está en draft la cantidad está
// "en tránsito": descontada del origen y aún no acreditada en ningún destino.
type TransferManifest struct {
	ID                    string
	BoxNumber             string // número de caja, único
	SourceLocationID      string
	DestinationLocationID string // vacío hasta aprobar
	Currency              string
	ExchangeRate          decimal.Decimal
	Status                string // draft, approved
	ApprovedBy            string
	ApprovedAt            *time.Time
	CreatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ManifestItem es una línea de un manifiesto: producto y cantidad trasladada.
type ManifestItem struct {
	ID         string
	ManifestID string
	ProductID  string
	Quantity   decimal.Decimal
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry es el registro del libro de stock para un par (producto, ubicación).
// Quantity nunca es negativa: un decremento que la dejaría bajo cero falla antes
// de mutar. La fila se crea de forma perezosa en la primera escritura y nunca se
// elimina, solo se lleva a cero.
type StockEntry struct {
	ProductID     string
	LocationID    string
	ManifestID    string // último manifiesto que movió este lote; vacío si no aplica
	Quantity      decimal.Decimal
	MarginPercent decimal.Decimal
	Currency      string
	UnitPrice     decimal.Decimal // precio de venta en esta ubicación
	LastUpdatedBy string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

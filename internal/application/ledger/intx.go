package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
	"github.com/soditex/almacen-api/internal/domain/valuation"
)

// Primitivas del libro de stock para usar DENTRO de la transacción del caller
// (mismo patrón que una salida de facturación: el caller abre la tx y pasa el
// repo atado a ella). Toda mutación del libro en los tres motores de movimiento
// pasa por estas funciones; GetForUpdate bloquea la fila contra lost updates.

// IncrementInTx suma delta (>= 0) al stock del par (producto, ubicación),
// creando la entrada si no existe.
func IncrementInTx(stockRepo repository.StockRepository, productID, locationID string, delta decimal.Decimal, actor string, now time.Time) (*entity.StockEntry, error) {
	if delta.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	entry, err := stockRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return nil, err
	}
	entry.Quantity = entry.Quantity.Add(delta)
	entry.LastUpdatedBy = actor
	entry.UpdatedAt = now
	if err := stockRepo.Upsert(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DecrementInTx resta delta del stock si hay suficiente. Si la entrada no existe
// o quantity < delta, falla con InsufficientStockError sin mutar nada.
func DecrementInTx(stockRepo repository.StockRepository, productID, locationID string, delta decimal.Decimal, actor string, now time.Time) (*entity.StockEntry, error) {
	if delta.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	entry, err := stockRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return nil, err
	}
	if entry.Quantity.LessThan(delta) {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Available: entry.Quantity,
			Requested: delta,
		}
	}
	entry.Quantity = entry.Quantity.Sub(delta)
	entry.LastUpdatedBy = actor
	entry.UpdatedAt = now
	if err := stockRepo.Upsert(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpsertPricingInTx recalcula el precio de venta de la ubicación desde el precio
// base y el margen, y persiste margen/moneda. Crea la entrada si no existe; la
// cantidad no cambia (el abono de cantidades es asunto de IncrementInTx y
// CreditTransferInTx).
func UpsertPricingInTx(stockRepo repository.StockRepository, productID, locationID string, basePrice, marginPercent decimal.Decimal, currency string, actor string, now time.Time) (*entity.StockEntry, error) {
	price, err := valuation.SellPrice(basePrice, marginPercent)
	if err != nil {
		return nil, err
	}
	entry, err := stockRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return nil, err
	}
	entry.MarginPercent = marginPercent
	entry.Currency = currency
	entry.UnitPrice = price
	entry.LastUpdatedBy = actor
	entry.UpdatedAt = now
	if err := stockRepo.Upsert(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditTransferInTx acredita en el destino una línea de manifiesto aprobado:
// suma la cantidad y fija precio/moneda convertidos, marcando el lote con el
// manifiesto que lo movió.
func CreditTransferInTx(stockRepo repository.StockRepository, productID, locationID, manifestID string, quantity, unitPrice decimal.Decimal, currency, actor string, now time.Time) (*entity.StockEntry, error) {
	if quantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	entry, err := stockRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return nil, err
	}
	entry.Quantity = entry.Quantity.Add(quantity)
	entry.ManifestID = manifestID
	entry.UnitPrice = unitPrice
	entry.Currency = currency
	entry.LastUpdatedBy = actor
	entry.UpdatedAt = now
	if err := stockRepo.Upsert(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

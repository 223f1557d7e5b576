package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

// UseCase expone las operaciones directas sobre el libro de stock: consulta,
// ajuste manual absoluto y precio por ubicación. Las mutaciones corren en su
// propia transacción.
type UseCase struct {
	txRunner    TxRunner
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, stockRepo repository.StockRepository, productRepo repository.ProductRepository) *UseCase {
	return &UseCase{txRunner: txRunner, stockRepo: stockRepo, productRepo: productRepo}
}

// Get retorna la entrada del libro para (producto, ubicación) o ErrNotFound.
func (uc *UseCase) Get(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	if productID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	entry, err := uc.stockRepo.Get(productID, locationID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// Adjust sobreescribe la cantidad con un valor absoluto (override manual, no pasa
// por la semántica de incremento/decremento). Crea la entrada si no existe.
func (uc *UseCase) Adjust(ctx context.Context, actorID, productID, locationID string, newQuantity decimal.Decimal) (*entity.StockEntry, error) {
	if productID == "" || locationID == "" || newQuantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var adjusted *entity.StockEntry
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		entry, err := stockRepo.GetForUpdate(productID, locationID)
		if err != nil {
			return err
		}
		entry.Quantity = newQuantity
		entry.LastUpdatedBy = actorID
		entry.UpdatedAt = now
		if err := stockRepo.Upsert(entry); err != nil {
			return err
		}
		adjusted = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// UpsertPricing fija margen y moneda para (producto, ubicación) y recalcula el
// precio de venta desde el precio base canónico del producto.
func (uc *UseCase) UpsertPricing(ctx context.Context, actorID, productID, locationID string, marginPercent decimal.Decimal, currency string) (*entity.StockEntry, error) {
	if productID == "" || locationID == "" || currency == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var updated *entity.StockEntry
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		entry, err := UpsertPricingInTx(stockRepo, productID, locationID, product.UnitPrice, marginPercent, currency, actorID, now)
		if err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

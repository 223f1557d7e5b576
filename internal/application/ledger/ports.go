package ledger

import (
	"context"

	"github.com/soditex/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el
// repositorio de stock atado a esa tx. Garantiza atomicidad para las operaciones
// directas sobre el libro (ajuste manual, precio por ubicación).
type TxRunner interface {
	Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error
}

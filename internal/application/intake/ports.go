package intake

import (
	"context"

	"github.com/soditex/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta la presentación de un control de calidad dentro de una
// transacción: registro, disponibilidad del producto y fan-out al libro de stock
// son todo-o-nada.
type TxRunner interface {
	RunIntake(ctx context.Context, fn func(
		qcRepo repository.QualityCheckRepository,
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
	) error) error
}

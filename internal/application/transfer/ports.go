package transfer

import (
	"context"

	"github.com/soditex/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una operación de manifiesto dentro de una transacción con
// repos atados a esa tx. Crear, editar, aprobar y borrar son todo-o-nada: las
// líneas ya aplicadas se revierten si una línea posterior falla.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		manifestRepo repository.ManifestRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

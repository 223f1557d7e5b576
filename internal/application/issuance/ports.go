package issuance

import (
	"context"

	"github.com/soditex/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una operación de facturación dentro de una transacción con
// repos atados a esa tx: factura y descuentos de stock son todo-o-nada.
type TxRunner interface {
	RunIssuance(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		stockRepo repository.StockRepository,
	) error) error
}

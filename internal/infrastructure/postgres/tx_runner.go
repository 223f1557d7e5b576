package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/soditex/almacen-api/internal/application/intake"
	"github.com/soditex/almacen-api/internal/application/issuance"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/application/transfer"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

// TxRunner implementa el puerto transaccional de cada motor de movimiento.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ intake.TxRunner = (*TxRunner)(nil)
var _ transfer.TxRunner = (*TxRunner)(nil)
var _ issuance.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con repos
// atados a esa tx; Commit si todo ok, Rollback si algo falla.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run transacción para operaciones directas sobre el libro de stock.
func (r *TxRunner) Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockRepository(q))
	})
}

// RunIntake transacción para la presentación de controles de calidad
// (registro + disponibilidad + fan-out).
func (r *TxRunner) RunIntake(ctx context.Context, fn func(
	qcRepo repository.QualityCheckRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewQualityCheckRepository(q), NewProductRepository(q), NewStockRepository(q))
	})
}

// RunTransfer transacción para operaciones de manifiestos de traslado.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	manifestRepo repository.ManifestRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewManifestRepository(q), NewStockRepository(q), NewProductRepository(q))
	})
}

// RunIssuance transacción para operaciones de facturación de ventas.
func (r *TxRunner) RunIssuance(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewInvoiceRepository(q), NewStockRepository(q))
	})
}

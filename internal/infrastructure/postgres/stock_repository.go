package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `product_id, location_id, COALESCE(manifest_id, ''), quantity, margin_percent, currency, unit_price, last_updated_by, created_at, updated_at`

func scanStockEntry(row pgx.Row) (*entity.StockEntry, error) {
	var e entity.StockEntry
	err := row.Scan(
		&e.ProductID, &e.LocationID, &e.ManifestID, &e.Quantity, &e.MarginPercent,
		&e.Currency, &e.UnitPrice, &e.LastUpdatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get obtiene la entrada del libro para (producto, ubicación), o (nil, nil) si no existe.
func (r *StockRepo) Get(productID, locationID string) (*entity.StockEntry, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries WHERE product_id = $1 AND location_id = $2`
	e, err := scanStockEntry(r.q.QueryRow(context.Background(), query, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock entry: %w", err)
	}
	return e, nil
}

// GetForUpdate obtiene la entrada y bloquea la fila (SELECT FOR UPDATE). Si no
// existe, primero materializa una entrada en cero y la bloquea: sin fila no hay
// nada que bloquear, y dos primeras escrituras concurrentes sobre el mismo par
// (producto, ubicación) se pisarían la una a la otra.
func (r *StockRepo) GetForUpdate(productID, locationID string) (*entity.StockEntry, error) {
	ctx := context.Background()
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	e, err := scanStockEntry(r.q.QueryRow(ctx, query, productID, locationID))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get stock entry for update: %w", err)
	}

	insert := `
		INSERT INTO stock_entries (product_id, location_id, quantity, margin_percent, unit_price, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, now(), now())
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID, locationID); err != nil {
		return nil, fmt.Errorf("seed stock entry: %w", err)
	}
	e, err = scanStockEntry(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		return nil, fmt.Errorf("get stock entry for update: %w", err)
	}
	return e, nil
}

// Upsert inserta o actualiza la entrada (por producto y ubicación). La fila
// nunca se borra, solo se actualiza.
func (r *StockRepo) Upsert(entry *entity.StockEntry) error {
	query := `
		INSERT INTO stock_entries (product_id, location_id, manifest_id, quantity, margin_percent, currency, unit_price, last_updated_by, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET
			manifest_id = EXCLUDED.manifest_id,
			quantity = EXCLUDED.quantity,
			margin_percent = EXCLUDED.margin_percent,
			currency = EXCLUDED.currency,
			unit_price = EXCLUDED.unit_price,
			last_updated_by = EXCLUDED.last_updated_by,
			updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		entry.ProductID, entry.LocationID, entry.ManifestID, entry.Quantity,
		entry.MarginPercent, entry.Currency, entry.UnitPrice, entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert stock entry: %w", err)
	}
	return nil
}

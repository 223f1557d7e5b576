package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

var _ repository.ManifestRepository = (*ManifestRepo)(nil)

// ManifestRepo implementación del puerto ManifestRepository sobre PostgreSQL.
type ManifestRepo struct {
	q Querier
}

// NewManifestRepository construye el adaptador de manifiestos. Pasar pool o tx (Querier).
func NewManifestRepository(q Querier) *ManifestRepo {
	return &ManifestRepo{q: q}
}

const manifestColumns = `
	id, box_number, source_location_id, COALESCE(destination_location_id, ''),
	currency, exchange_rate, status, COALESCE(approved_by, ''), approved_at,
	created_by, created_at, updated_at`

func scanManifest(row pgx.Row) (*entity.TransferManifest, error) {
	var m entity.TransferManifest
	err := row.Scan(
		&m.ID, &m.BoxNumber, &m.SourceLocationID, &m.DestinationLocationID,
		&m.Currency, &m.ExchangeRate, &m.Status, &m.ApprovedBy, &m.ApprovedAt,
		&m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste el encabezado del manifiesto junto con sus líneas. Debe
// invocarse dentro de la misma transacción que descuenta el stock de origen.
func (r *ManifestRepo) Create(manifest *entity.TransferManifest, items []*entity.ManifestItem) error {
	query := `
		INSERT INTO transfer_manifests (
			id, box_number, source_location_id, destination_location_id,
			currency, exchange_rate, status, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		manifest.ID, manifest.BoxNumber, manifest.SourceLocationID,
		manifest.DestinationLocationID, manifest.Currency, manifest.ExchangeRate,
		manifest.Status, manifest.CreatedBy, manifest.CreatedAt, manifest.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert manifest: %w", err)
	}
	return r.insertItems(manifest.ID, items)
}

// GetByID obtiene un manifiesto por ID, o (nil, nil) si no existe.
func (r *ManifestRepo) GetByID(id string) (*entity.TransferManifest, error) {
	query := `SELECT ` + manifestColumns + ` FROM transfer_manifests WHERE id = $1`
	m, err := scanManifest(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manifest: %w", err)
	}
	return m, nil
}

// GetForUpdate obtiene el manifiesto bloqueando su fila: las operaciones
// concurrentes sobre el mismo manifiesto esperan aquí y releen el estado ya
// committeado, con lo que la transición draft -> approved ocurre una sola vez.
func (r *ManifestRepo) GetForUpdate(id string) (*entity.TransferManifest, error) {
	query := `SELECT ` + manifestColumns + ` FROM transfer_manifests WHERE id = $1 FOR UPDATE`
	m, err := scanManifest(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manifest for update: %w", err)
	}
	return m, nil
}

// GetItems devuelve las líneas del manifiesto en orden de inserción.
func (r *ManifestRepo) GetItems(manifestID string) ([]*entity.ManifestItem, error) {
	query := `
		SELECT id, manifest_id, product_id, quantity
		FROM transfer_manifest_items WHERE manifest_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, manifestID)
	if err != nil {
		return nil, fmt.Errorf("list manifest items: %w", err)
	}
	defer rows.Close()

	var out []*entity.ManifestItem
	for rows.Next() {
		var it entity.ManifestItem
		if err := rows.Scan(&it.ID, &it.ManifestID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan manifest item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// ReplaceItems reemplaza todas las líneas del manifiesto. Debe invocarse dentro
// de la misma transacción que reconcilia el stock de origen.
func (r *ManifestRepo) ReplaceItems(manifestID string, items []*entity.ManifestItem) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM transfer_manifest_items WHERE manifest_id = $1`, manifestID)
	if err != nil {
		return fmt.Errorf("delete manifest items: %w", err)
	}
	return r.insertItems(manifestID, items)
}

// Update persiste estado, destino, moneda/tasa y datos de aprobación.
func (r *ManifestRepo) Update(manifest *entity.TransferManifest) error {
	query := `
		UPDATE transfer_manifests
		SET box_number = $2, destination_location_id = NULLIF($3, ''),
		    currency = $4, exchange_rate = $5, status = $6,
		    approved_by = NULLIF($7, ''), approved_at = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		manifest.ID, manifest.BoxNumber, manifest.DestinationLocationID,
		manifest.Currency, manifest.ExchangeRate, manifest.Status,
		manifest.ApprovedBy, manifest.ApprovedAt, manifest.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update manifest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina las líneas y luego el encabezado del manifiesto.
func (r *ManifestRepo) Delete(id string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx,
		`DELETE FROM transfer_manifest_items WHERE manifest_id = $1`, id); err != nil {
		return fmt.Errorf("delete manifest items: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM transfer_manifests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete manifest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ManifestRepo) insertItems(manifestID string, items []*entity.ManifestItem) error {
	query := `
		INSERT INTO transfer_manifest_items (id, manifest_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, NOW())`
	for _, it := range items {
		if _, err := r.q.Exec(context.Background(), query,
			it.ID, manifestID, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("insert manifest item: %w", err)
		}
	}
	return nil
}

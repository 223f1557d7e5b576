package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

var _ repository.QualityCheckRepository = (*QualityCheckRepo)(nil)

// QualityCheckRepo implementación del puerto QualityCheckRepository sobre PostgreSQL.
type QualityCheckRepo struct {
	q Querier
}

// NewQualityCheckRepository construye el adaptador de control de calidad.
func NewQualityCheckRepository(q Querier) *QualityCheckRepo {
	return &QualityCheckRepo{q: q}
}

// GetByProduct retorna el registro vigente de inspección, o (nil, nil) si no existe.
func (r *QualityCheckRepo) GetByProduct(productID string) (*entity.QualityCheckRecord, error) {
	query := `
		SELECT id, product_id, status, damaged_quantity, remarks, inspector_id,
		       created_at, updated_at
		FROM quality_checks WHERE product_id = $1`
	var rec entity.QualityCheckRecord
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&rec.ID, &rec.ProductID, &rec.Status, &rec.DamagedQuantity,
		&rec.Remarks, &rec.InspectorID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quality check: %w", err)
	}
	return &rec, nil
}

// Upsert sobreescribe el registro vigente del producto (a lo sumo uno por producto).
func (r *QualityCheckRepo) Upsert(record *entity.QualityCheckRecord) error {
	query := `
		INSERT INTO quality_checks (
			id, product_id, status, damaged_quantity, remarks, inspector_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id) DO UPDATE SET
			status = EXCLUDED.status,
			damaged_quantity = EXCLUDED.damaged_quantity,
			remarks = EXCLUDED.remarks,
			inspector_id = EXCLUDED.inspector_id,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.ProductID, record.Status, record.DamagedQuantity,
		record.Remarks, record.InspectorID, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert quality check: %w", err)
	}
	return nil
}

package repository

import "github.com/soditex/almacen-api/internal/domain/entity"

// QualityCheckRepository define el puerto del registro de control de calidad.
// Un producto tiene a lo sumo un registro vigente (la re-presentación sobreescribe).
type QualityCheckRepository interface {
	// GetByProduct retorna el registro vigente o (nil, nil) si no existe.
	GetByProduct(productID string) (*entity.QualityCheckRecord, error)
	Upsert(record *entity.QualityCheckRecord) error
}

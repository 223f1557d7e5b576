package repository

import "github.com/soditex/almacen-api/internal/domain/entity"

// ManifestRepository define el puerto de persistencia para manifiestos de traslado.
type ManifestRepository interface {
	Create(manifest *entity.TransferManifest, items []*entity.ManifestItem) error
	GetByID(id string) (*entity.TransferManifest, error)
	// GetForUpdate bloquea el encabezado (SELECT FOR UPDATE): editar, aprobar y
	// borrar serializan sobre la fila del manifiesto, de modo que la guarda de
	// estado draft se evalúa sobre el estado ya committeado, nunca sobre una
	// lectura vieja. Retorna (nil, nil) si no existe.
	GetForUpdate(id string) (*entity.TransferManifest, error)
	GetItems(manifestID string) ([]*entity.ManifestItem, error)
	// ReplaceItems reemplaza todas las líneas del manifiesto (edición en draft).
	ReplaceItems(manifestID string, items []*entity.ManifestItem) error
	// Update persiste estado, destino, moneda/tasa y datos de aprobación.
	Update(manifest *entity.TransferManifest) error
	Delete(id string) error
}

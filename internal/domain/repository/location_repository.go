package repository

import "github.com/soditex/almacen-api/internal/domain/entity"

// LocationRepository define el puerto del registro de ubicaciones.
type LocationRepository interface {
	Create(location *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	// ListByRole retorna las ubicaciones con el rol indicado. Sin fallback:
	// una lista vacía se retorna tal cual.
	ListByRole(role string) ([]*entity.Location, error)
}

package repository

import "github.com/soditex/almacen-api/internal/domain/entity"

// StockRepository define el puerto del libro de stock por (producto, ubicación).
// Es el único recurso mutado por más de un motor; toda estrategia de bloqueo
// se concentra aquí.
type StockRepository interface {
	// Get retorna la entrada o (nil, nil) si no existe.
	Get(productID, locationID string) (*entity.StockEntry, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si no existe, la
	// materializa en cero y la bloquea: la primera escritura de un par
	// (producto, ubicación) también serializa sobre la fila.
	GetForUpdate(productID, locationID string) (*entity.StockEntry, error)
	Upsert(entry *entity.StockEntry) error
}

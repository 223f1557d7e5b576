package repository

import (
	"github.com/shopspring/decimal"
	"github.com/soditex/almacen-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El CRUD completo vive en el catálogo; aquí solo lo que el motor necesita.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE): las
	// presentaciones de control de calidad concurrentes sobre el mismo producto
	// serializan aquí, con lo que el abono de ingreso ocurre una sola vez.
	// Retorna (nil, nil) si no existe.
	GetForUpdate(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	// UpdatePricing muta el precio canónico (repreciado de catálogo en aprobación
	// de manifiestos, cuando la opción está activa).
	UpdatePricing(productID string, price decimal.Decimal, currency string) error
	// UpdateAvailability escribe cantidad disponible y estado de inspección
	// (control de calidad).
	UpdateAvailability(productID string, available decimal.Decimal, inspectionStatus string) error
}

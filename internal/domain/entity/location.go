package entity

import "time"

// Roles de ubicación. Las ubicaciones con rol "intake" reciben el fan-out
// de stock cuando un control de calidad pasa a aprobado.
const (
	LocationRoleIntake = "intake"
	LocationRoleStore  = "store"
)

// Location representa una bodega o tienda donde reside inventario.
type Location struct {
	ID        string
	Name      string
	Address   string
	Role      string // intake, store
	CreatedAt time.Time
	UpdatedAt time.Time
}

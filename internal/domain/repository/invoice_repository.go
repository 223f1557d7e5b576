package repository

import "github.com/soditex/almacen-api/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para facturas de venta.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice, items []*entity.InvoiceItem) error
	GetByID(id string) (*entity.Invoice, error)
	GetItems(invoiceID string) ([]*entity.InvoiceItem, error)
	// Update persiste los totales recalculados tras una edición.
	Update(invoice *entity.Invoice) error
	// ReplaceItems reemplaza todas las líneas de la factura.
	ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error
	Delete(id string) error
}

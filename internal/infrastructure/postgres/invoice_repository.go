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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository sobre PostgreSQL.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador de facturas. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, number, location_id, subtotal, discount_total, vat_total,
	tax_amount, net_amount, created_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.LocationID, &inv.Subtotal, &inv.DiscountTotal,
		&inv.VATTotal, &inv.TaxAmount, &inv.NetAmount, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persiste el encabezado de la factura junto con sus líneas. Debe
// invocarse dentro de la misma transacción que descuenta el stock.
func (r *InvoiceRepo) Create(invoice *entity.Invoice, items []*entity.InvoiceItem) error {
	query := `
		INSERT INTO invoices (
			id, number, location_id, subtotal, discount_total, vat_total,
			tax_amount, net_amount, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Number, invoice.LocationID, invoice.Subtotal,
		invoice.DiscountTotal, invoice.VATTotal, invoice.TaxAmount,
		invoice.NetAmount, invoice.CreatedBy, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return r.insertItems(invoice.ID, items)
}

// GetByID obtiene una factura por ID, o (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetItems devuelve las líneas de la factura en orden de inserción.
func (r *InvoiceRepo) GetItems(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, quantity, unit_price,
		       discount_percent, vat_percent, total
		FROM invoice_items WHERE invoice_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	var out []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.DiscountPercent, &it.VATPercent, &it.Total)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// Update persiste los totales recalculados tras una edición.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET subtotal = $2, discount_total = $3, vat_total = $4,
		    tax_amount = $5, net_amount = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Subtotal, invoice.DiscountTotal, invoice.VATTotal,
		invoice.TaxAmount, invoice.NetAmount, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems reemplaza todas las líneas de la factura. Debe invocarse dentro
// de la misma transacción que reconcilia el stock.
func (r *InvoiceRepo) ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return r.insertItems(invoiceID, items)
}

// Delete elimina las líneas y luego el encabezado de la factura.
func (r *InvoiceRepo) Delete(id string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx,
		`DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) insertItems(invoiceID string, items []*entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (
			id, invoice_id, product_id, quantity, unit_price,
			discount_percent, vat_percent, total, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`
	for _, it := range items {
		if _, err := r.q.Exec(context.Background(), query,
			it.ID, invoiceID, it.ProductID, it.Quantity, it.UnitPrice,
			it.DiscountPercent, it.VATPercent, it.Total); err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

package issuance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/soditex/almacen-api/internal/application/dto"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
	"github.com/soditex/almacen-api/internal/domain/valuation"
)

// InvoiceUseCase implementa la emisión de ventas: crear descuenta stock de la
// ubicación línea a línea, editar reconcilia por diferencias contra las líneas
// persistidas, borrar restaura todo. Cada operación corre en una transacción.
type InvoiceUseCase struct {
	txRunner     TxRunner
	invoiceRepo  repository.InvoiceRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		invoiceRepo:  invoiceRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
	}
}

// buildItems valida las líneas, completa el precio unitario desde el catálogo
// cuando viene en cero y calcula el total de cada línea vía valuación.
func (uc *InvoiceUseCase) buildItems(invoiceID string, in []dto.InvoiceItemRequest) ([]*entity.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, domain.ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(in))
	items := make([]*entity.InvoiceItem, 0, len(in))
	for _, it := range in {
		if it.ProductID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if _, dup := seen[it.ProductID]; dup {
			return nil, domain.ErrInvalidInput
		}
		seen[it.ProductID] = struct{}{}
		product, err := uc.productRepo.GetByID(it.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		unitPrice := it.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.UnitPrice
		}
		totals, err := valuation.LineTotal(it.Quantity, unitPrice, it.DiscountPercent, it.VATPercent)
		if err != nil {
			return nil, err
		}
		items = append(items, &entity.InvoiceItem{
			ID:              uuid.New().String(),
			InvoiceID:       invoiceID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: it.DiscountPercent,
			VATPercent:      it.VATPercent,
			Total:           totals.Total,
		})
	}
	return items, nil
}

// applyTotals acumula subtotal/descuento/IVA/neto sobre la factura.
func applyTotals(inv *entity.Invoice, items []*entity.InvoiceItem, taxAmount *decimal.Decimal) error {
	var subtotal, discountTotal, vatTotal, netAmount decimal.Decimal
	for _, item := range items {
		totals, err := valuation.LineTotal(item.Quantity, item.UnitPrice, item.DiscountPercent, item.VATPercent)
		if err != nil {
			return err
		}
		subtotal = subtotal.Add(totals.Gross)
		discountTotal = discountTotal.Add(totals.DiscountAmount)
		vatTotal = vatTotal.Add(totals.VATAmount)
		netAmount = netAmount.Add(totals.Total)
	}
	tax := decimal.Zero
	if taxAmount != nil {
		if taxAmount.LessThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		tax = *taxAmount
	}
	inv.Subtotal = subtotal
	inv.DiscountTotal = discountTotal
	inv.VATTotal = vatTotal
	inv.TaxAmount = tax
	inv.NetAmount = netAmount.Add(tax)
	return nil
}

// Create emite una factura: descuenta stock de la ubicación por cada línea en
// una sola transacción (un faltante revierte las líneas anteriores) y persiste
// cabecera y detalle con los totales calculados.
func (uc *InvoiceUseCase) Create(ctx context.Context, actorID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	loc, err := uc.locationRepo.GetByID(in.LocationID)
	if err != nil || loc == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:         uuid.New().String(),
		Number:     in.Number,
		LocationID: in.LocationID,
		CreatedBy:  actorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if invoice.Number == "" {
		invoice.Number = fmt.Sprintf("INV-%d", now.Unix())
	}
	items, err := uc.buildItems(invoice.ID, in.Items)
	if err != nil {
		return nil, err
	}
	if err := applyTotals(invoice, items, in.TaxAmount); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunIssuance(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		stockRepo repository.StockRepository,
	) error {
		for _, item := range items {
			if _, err := ledger.DecrementInTx(stockRepo, item.ProductID, invoice.LocationID, item.Quantity, actorID, now); err != nil {
				return err
			}
		}
		return invoiceRepo.Create(invoice, items)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, items), nil
}

// Edit reemplaza las líneas reconciliando por diferencias contra las líneas
// persistidas de la factura (no contra lo que afirme el caller): diff > 0
// descuenta del libro, diff < 0 restaura, producto removido restaura completo.
// Persiste las nuevas líneas y los totales recalculados.
func (uc *InvoiceUseCase) Edit(ctx context.Context, actorID, id string, in dto.EditInvoiceRequest) (*dto.InvoiceResponse, error) {
	now := time.Now()
	var invoice *entity.Invoice
	var newItems []*entity.InvoiceItem
	err := uc.txRunner.RunIssuance(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		stockRepo repository.StockRepository,
	) error {
		var err error
		invoice, err = invoiceRepo.GetByID(id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		oldItems, err := invoiceRepo.GetItems(id)
		if err != nil {
			return err
		}
		newItems, err = uc.buildItems(id, in.Items)
		if err != nil {
			return err
		}

		oldQty := make(map[string]decimal.Decimal, len(oldItems))
		for _, it := range oldItems {
			oldQty[it.ProductID] = it.Quantity
		}
		inNew := make(map[string]struct{}, len(newItems))
		for _, item := range newItems {
			inNew[item.ProductID] = struct{}{}
			diff := item.Quantity.Sub(oldQty[item.ProductID])
			switch {
			case diff.GreaterThan(decimal.Zero):
				if _, err := ledger.DecrementInTx(stockRepo, item.ProductID, invoice.LocationID, diff, actorID, now); err != nil {
					return err
				}
			case diff.LessThan(decimal.Zero):
				if _, err := ledger.IncrementInTx(stockRepo, item.ProductID, invoice.LocationID, diff.Neg(), actorID, now); err != nil {
					return err
				}
			}
		}
		for _, it := range oldItems {
			if _, keep := inNew[it.ProductID]; keep {
				continue
			}
			if _, err := ledger.IncrementInTx(stockRepo, it.ProductID, invoice.LocationID, it.Quantity, actorID, now); err != nil {
				return err
			}
		}

		if err := applyTotals(invoice, newItems, in.TaxAmount); err != nil {
			return err
		}
		invoice.UpdatedAt = now
		if err := invoiceRepo.ReplaceItems(id, newItems); err != nil {
			return err
		}
		return invoiceRepo.Update(invoice)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, newItems), nil
}

// Delete elimina la factura restaurando la cantidad de cada línea persistida al
// libro de la ubicación exactamente una vez.
func (uc *InvoiceUseCase) Delete(ctx context.Context, actorID, id string) error {
	now := time.Now()
	return uc.txRunner.RunIssuance(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		stockRepo repository.StockRepository,
	) error {
		invoice, err := invoiceRepo.GetByID(id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		items, err := invoiceRepo.GetItems(id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := ledger.IncrementInTx(stockRepo, item.ProductID, invoice.LocationID, item.Quantity, actorID, now); err != nil {
				return err
			}
		}
		return invoiceRepo.Delete(id)
	})
}

// Get retorna una factura con sus líneas.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, items), nil
}

func toInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceItem) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		LocationID:    inv.LocationID,
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		VATTotal:      inv.VATTotal,
		TaxAmount:     inv.TaxAmount,
		NetAmount:     inv.NetAmount,
		Items:         make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			VATPercent:      it.VATPercent,
			Total:           it.Total,
		})
	}
	return resp
}

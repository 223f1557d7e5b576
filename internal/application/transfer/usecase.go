package transfer

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

// Options opciones explícitas del motor de traslados.
type Options struct {
	// RepriceCatalogOnApproval: si está activa, aprobar un manifiesto con
	// conversión de moneda también actualiza el precio canónico del producto
	// en el catálogo (efecto global). Apagada, la conversión queda solo en el
	// libro del destino.
	RepriceCatalogOnApproval bool
}

// ManifestUseCase implementa el motor de manifiestos de traslado: crear reserva
// stock en el origen, editar reconcilia por diferencias contra el estado
// persistido, aprobar acredita el destino con conversión de moneda, borrar
// restaura el origen. Cada operación corre en una sola transacción.
type ManifestUseCase struct {
	txRunner     TxRunner
	manifestRepo repository.ManifestRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	opts         Options
}

// NewManifestUseCase construye el caso de uso.
func NewManifestUseCase(
	txRunner TxRunner,
	manifestRepo repository.ManifestRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	opts Options,
) *ManifestUseCase {
	return &ManifestUseCase{
		txRunner:     txRunner,
		manifestRepo: manifestRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		opts:         opts,
	}
}

// validateItems valida líneas: producto presente, cantidad > 0, sin productos
// repetidos (la reconciliación por diferencias exige un mapa producto -> cantidad).
func (uc *ManifestUseCase) validateItems(items []dto.ManifestItemRequest) error {
	if len(items) == 0 {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ProductID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if _, dup := seen[it.ProductID]; dup {
			return domain.ErrInvalidInput
		}
		seen[it.ProductID] = struct{}{}
		product, err := uc.productRepo.GetByID(it.ProductID)
		if err != nil || product == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// Create reserva stock en el origen por cada línea y persiste el manifiesto en
// draft. La cantidad queda "en tránsito": invisible en origen y destino. Un
// faltante en cualquier línea revierte todas las anteriores.
func (uc *ManifestUseCase) Create(ctx context.Context, actorID string, in dto.CreateManifestRequest) (*dto.ManifestResponse, error) {
	if in.SourceLocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	source, err := uc.locationRepo.GetByID(in.SourceLocationID)
	if err != nil || source == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.validateItems(in.Items); err != nil {
		return nil, err
	}

	now := time.Now()
	boxNumber := in.BoxNumber
	if boxNumber == "" {
		boxNumber = fmt.Sprintf("BOX-%d", now.UnixNano())
	}
	manifest := &entity.TransferManifest{
		ID:               uuid.New().String(),
		BoxNumber:        boxNumber,
		SourceLocationID: in.SourceLocationID,
		Status:           entity.ManifestStatusDraft,
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	items := make([]*entity.ManifestItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, &entity.ManifestItem{
			ID:         uuid.New().String(),
			ManifestID: manifest.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
		})
	}

	err = uc.txRunner.RunTransfer(ctx, func(
		manifestRepo repository.ManifestRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		for _, item := range items {
			if _, err := ledger.DecrementInTx(stockRepo, item.ProductID, manifest.SourceLocationID, item.Quantity, actorID, now); err != nil {
				return err
			}
		}
		return manifestRepo.Create(manifest, items)
	})
	if err != nil {
		return nil, err
	}
	return toManifestResponse(manifest, items), nil
}

// Edit reemplaza las líneas de un manifiesto en draft reconciliando contra el
// estado persistido (nunca contra el estado que afirme el caller): diff > 0
// descuenta más del origen, diff < 0 restaura, producto removido restaura su
// cantidad completa.
func (uc *ManifestUseCase) Edit(ctx context.Context, actorID, id string, in dto.EditManifestRequest) (*dto.ManifestResponse, error) {
	if err := uc.validateItems(in.Items); err != nil {
		return nil, err
	}

	now := time.Now()
	var manifest *entity.TransferManifest
	var newItems []*entity.ManifestItem
	err := uc.txRunner.RunTransfer(ctx, func(
		manifestRepo repository.ManifestRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		manifest, err = manifestRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if manifest == nil {
			return domain.ErrNotFound
		}
		if manifest.Status != entity.ManifestStatusDraft {
			return domain.ErrConflict
		}
		oldItems, err := manifestRepo.GetItems(id)
		if err != nil {
			return err
		}

		oldQty := make(map[string]decimal.Decimal, len(oldItems))
		for _, it := range oldItems {
			oldQty[it.ProductID] = it.Quantity
		}
		newItems = make([]*entity.ManifestItem, 0, len(in.Items))
		inNew := make(map[string]struct{}, len(in.Items))
		for _, it := range in.Items {
			inNew[it.ProductID] = struct{}{}
			newItems = append(newItems, &entity.ManifestItem{
				ID:         uuid.New().String(),
				ManifestID: id,
				ProductID:  it.ProductID,
				Quantity:   it.Quantity,
			})
			diff := it.Quantity.Sub(oldQty[it.ProductID])
			switch {
			case diff.GreaterThan(decimal.Zero):
				if _, err := ledger.DecrementInTx(stockRepo, it.ProductID, manifest.SourceLocationID, diff, actorID, now); err != nil {
					return err
				}
			case diff.LessThan(decimal.Zero):
				if _, err := ledger.IncrementInTx(stockRepo, it.ProductID, manifest.SourceLocationID, diff.Neg(), actorID, now); err != nil {
					return err
				}
			}
		}
		// Productos removidos de la lista: restauración completa en el origen.
		for _, it := range oldItems {
			if _, keep := inNew[it.ProductID]; keep {
				continue
			}
			if _, err := ledger.IncrementInTx(stockRepo, it.ProductID, manifest.SourceLocationID, it.Quantity, actorID, now); err != nil {
				return err
			}
		}

		if err := manifestRepo.ReplaceItems(id, newItems); err != nil {
			return err
		}
		manifest.UpdatedAt = now
		return manifestRepo.Update(manifest)
	})
	if err != nil {
		return nil, err
	}
	return toManifestResponse(manifest, newItems), nil
}

// Approve transiciona draft -> approved una sola vez. Por cada línea acredita el
// destino con el precio canónico del producto convertido a la moneda del
// manifiesto (precio * tasa) cuando la moneda difiere y hay tasa. Con la opción
// RepriceCatalogOnApproval también actualiza el precio canónico del catálogo.
func (uc *ManifestUseCase) Approve(ctx context.Context, actorID, id string, in dto.ApproveManifestRequest) (*dto.ManifestResponse, error) {
	if in.DestinationLocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	dest, err := uc.locationRepo.GetByID(in.DestinationLocationID)
	if err != nil || dest == nil {
		return nil, domain.ErrNotFound
	}
	rate := decimal.Zero
	if in.ExchangeRate != nil {
		if !in.ExchangeRate.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		rate = *in.ExchangeRate
	}

	now := time.Now()
	var manifest *entity.TransferManifest
	var items []*entity.ManifestItem
	err = uc.txRunner.RunTransfer(ctx, func(
		manifestRepo repository.ManifestRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		// Bloquea el encabezado: dos aprobaciones concurrentes serializan aquí
		// y la segunda ve el estado approved ya committeado.
		manifest, err = manifestRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if manifest == nil {
			return domain.ErrNotFound
		}
		// Aprobación única: re-aprobar falla, no re-aplica.
		if manifest.Status != entity.ManifestStatusDraft {
			return domain.ErrConflict
		}
		items, err = manifestRepo.GetItems(id)
		if err != nil {
			return err
		}

		for _, item := range items {
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil || product == nil {
				return domain.ErrNotFound
			}
			price := product.UnitPrice
			currency := product.Currency
			if in.Currency != "" && in.Currency != product.Currency && rate.GreaterThan(decimal.Zero) {
				price = valuation.ConvertPrice(product.UnitPrice, rate)
				currency = in.Currency
			}
			if _, err := ledger.CreditTransferInTx(stockRepo, item.ProductID, in.DestinationLocationID, id, item.Quantity, price, currency, actorID, now); err != nil {
				return err
			}
			if uc.opts.RepriceCatalogOnApproval && !price.Equal(product.UnitPrice) {
				if err := productRepo.UpdatePricing(item.ProductID, price, currency); err != nil {
					return err
				}
			}
		}

		manifest.Status = entity.ManifestStatusApproved
		manifest.DestinationLocationID = in.DestinationLocationID
		manifest.Currency = in.Currency
		manifest.ExchangeRate = rate
		manifest.ApprovedBy = actorID
		manifest.ApprovedAt = &now
		manifest.UpdatedAt = now
		return manifestRepo.Update(manifest)
	})
	if err != nil {
		return nil, err
	}
	return toManifestResponse(manifest, items), nil
}

// Delete elimina un manifiesto en draft restaurando cada línea al origen
// exactamente una vez (según el último estado persistido). Un manifiesto
// aprobado no puede borrarse.
func (uc *ManifestUseCase) Delete(ctx context.Context, actorID, id string) error {
	now := time.Now()
	return uc.txRunner.RunTransfer(ctx, func(
		manifestRepo repository.ManifestRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		manifest, err := manifestRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if manifest == nil {
			return domain.ErrNotFound
		}
		if manifest.Status != entity.ManifestStatusDraft {
			return domain.ErrConflict
		}
		items, err := manifestRepo.GetItems(id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := ledger.IncrementInTx(stockRepo, item.ProductID, manifest.SourceLocationID, item.Quantity, actorID, now); err != nil {
				return err
			}
		}
		return manifestRepo.Delete(id)
	})
}

// Get retorna un manifiesto con sus líneas.
func (uc *ManifestUseCase) Get(ctx context.Context, id string) (*dto.ManifestResponse, error) {
	manifest, err := uc.manifestRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.manifestRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return toManifestResponse(manifest, items), nil
}

func toManifestResponse(m *entity.TransferManifest, items []*entity.ManifestItem) *dto.ManifestResponse {
	resp := &dto.ManifestResponse{
		ID:                    m.ID,
		BoxNumber:             m.BoxNumber,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Currency:              m.Currency,
		ExchangeRate:          m.ExchangeRate,
		Status:                m.Status,
		ApprovedBy:            m.ApprovedBy,
		Items:                 make([]dto.ManifestItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.ManifestItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return resp
}

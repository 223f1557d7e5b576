package intake

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/soditex/almacen-api/internal/application/dto"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

// SubmitQualityCheckUseCase registra el resultado de inspección de un producto y,
// en la transición a aprobado, abona la cantidad disponible en cada ubicación con
// rol de ingreso. El fan-out corre en la misma transacción que el registro: una
// falla en la ubicación N revierte también las ubicaciones 1..N-1.
type SubmitQualityCheckUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

// NewSubmitQualityCheckUseCase construye el caso de uso.
func NewSubmitQualityCheckUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) *SubmitQualityCheckUseCase {
	return &SubmitQualityCheckUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
	}
}

// Submit valida y persiste el resultado de inspección. El registro por producto se
// sobreescribe (no se versiona). Disponible = max(0, cantidad - dañados).
// El abono al libro ocurre solo en la transición hacia aprobado: re-aprobar un
// producto ya aprobado actualiza el registro pero no vuelve a abonar stock.
func (uc *SubmitQualityCheckUseCase) Submit(ctx context.Context, actorID string, in dto.SubmitQualityCheckRequest) (*dto.QualityCheckResponse, error) {
	switch in.Status {
	case entity.InspectionPending, entity.InspectionApproved, entity.InspectionRejected:
	default:
		return nil, domain.ErrInvalidInput
	}
	damaged := decimal.Zero
	if in.DamagedQuantity != nil {
		if in.DamagedQuantity.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		damaged = *in.DamagedQuantity
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}

	// Destinos de ingreso: solo ubicaciones con rol intake, resueltas de forma
	// explícita. Cero ubicaciones elegibles es un error de configuración, nunca
	// se amplía en silencio a todas las ubicaciones.
	var intakeLocations []*entity.Location
	if in.Status == entity.InspectionApproved {
		intakeLocations, err = uc.locationRepo.ListByRole(entity.LocationRoleIntake)
		if err != nil {
			return nil, err
		}
		if len(intakeLocations) == 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	available := decimal.Zero
	var record *entity.QualityCheckRecord
	err = uc.txRunner.RunIntake(ctx, func(
		qcRepo repository.QualityCheckRepository,
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
	) error {
		// Bloquea la fila del producto: dos presentaciones concurrentes sobre el
		// mismo producto serializan aquí, y la segunda lee el registro de
		// inspección ya committeado (el abono a ingreso corre una sola vez).
		locked, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		available = locked.Quantity.Sub(damaged)
		if available.LessThan(decimal.Zero) {
			available = decimal.Zero
		}

		prev, err := qcRepo.GetByProduct(in.ProductID)
		if err != nil {
			return err
		}
		record = &entity.QualityCheckRecord{
			ID:              uuid.New().String(),
			ProductID:       in.ProductID,
			Status:          in.Status,
			DamagedQuantity: damaged,
			Remarks:         in.Remarks,
			InspectorID:     actorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if prev != nil {
			record.ID = prev.ID
			record.CreatedAt = prev.CreatedAt
		}
		if err := qcRepo.Upsert(record); err != nil {
			return err
		}
		if err := productRepo.UpdateAvailability(in.ProductID, available, in.Status); err != nil {
			return err
		}

		// Fan-out idempotente: solo en la arista (no aprobado) -> aprobado.
		alreadyApproved := prev != nil && prev.Status == entity.InspectionApproved
		if in.Status != entity.InspectionApproved || alreadyApproved || !available.GreaterThan(decimal.Zero) {
			return nil
		}
		for _, loc := range intakeLocations {
			if _, err := ledger.IncrementInTx(stockRepo, in.ProductID, loc.ID, available, actorID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.QualityCheckResponse{
		ID:                record.ID,
		ProductID:         record.ProductID,
		Status:            record.Status,
		DamagedQuantity:   record.DamagedQuantity,
		AvailableQuantity: available,
		Remarks:           record.Remarks,
		InspectorID:       record.InspectorID,
	}, nil
}

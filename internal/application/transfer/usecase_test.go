package transfer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soditex/almacen-api/internal/application/apptest"
	"github.com/soditex/almacen-api/internal/application/dto"
	"github.com/soditex/almacen-api/internal/application/transfer"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTransferUC(store *apptest.Store, opts transfer.Options) *transfer.ManifestUseCase {
	return transfer.NewManifestUseCase(
		apptest.NewTxRunner(store),
		apptest.NewManifestRepo(store),
		apptest.NewProductRepo(store),
		apptest.NewLocationRepo(store),
		opts,
	)
}

func seedTransferStore() *apptest.Store {
	store := apptest.NewStore()
	store.Products["pX"] = &entity.Product{ID: "pX", SKU: "SKU-X", Name: "Lámpara", UnitPrice: d("100"), Currency: "INR"}
	store.Products["pY"] = &entity.Product{ID: "pY", SKU: "SKU-Y", Name: "Silla", UnitPrice: d("30"), Currency: "INR"}
	store.Locations["src"] = &entity.Location{ID: "src", Name: "Bodega Origen", Role: entity.LocationRoleIntake}
	store.Locations["dst"] = &entity.Location{ID: "dst", Name: "Tienda Destino", Role: entity.LocationRoleStore}
	store.Stock["pX|src"] = &entity.StockEntry{ProductID: "pX", LocationID: "src", Quantity: d("50"), Currency: "INR", UnitPrice: d("100")}
	store.Stock["pY|src"] = &entity.StockEntry{ProductID: "pY", LocationID: "src", Quantity: d("20"), Currency: "INR", UnitPrice: d("30")}
	return store
}

// Crear reserva: descuenta el origen y deja la cantidad en tránsito
// (invisible en origen y destino).
func TestCreate_ReservaEnOrigen(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items: []dto.ManifestItemRequest{
			{ProductID: "pX", Quantity: d("10")},
			{ProductID: "pY", Quantity: d("5")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ManifestStatusDraft, m.Status)
	assert.NotEmpty(t, m.BoxNumber)
	assert.Len(t, m.Items, 2)

	assert.True(t, store.StockQty("pX", "src").Equal(d("40")))
	assert.True(t, store.StockQty("pY", "src").Equal(d("15")))
	assert.Nil(t, store.StockEntry("pX", "dst"), "nada acreditado en destino antes de aprobar")
}

// Un faltante en la línea K revierte también las líneas 1..K-1 (todo-o-nada).
func TestCreate_FaltanteRevierteTodo(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	_, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items: []dto.ManifestItemRequest{
			{ProductID: "pX", Quantity: d("10")}, // alcanza
			{ProductID: "pY", Quantity: d("999")}, // no alcanza
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, "pY", insErr.ProductID)

	assert.True(t, store.StockQty("pX", "src").Equal(d("50")), "la primera línea debe revertirse")
	assert.True(t, store.StockQty("pY", "src").Equal(d("20")))
	assert.Empty(t, store.Manifests)
}

// Edición por diferencias contra el estado persistido: subir pX 10->15 descuenta
// 5 más, quitar pY restaura sus 5 completos, agregar puede descontar.
func TestEdit_ReconciliaPorDiferencias(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items: []dto.ManifestItemRequest{
			{ProductID: "pX", Quantity: d("10")},
			{ProductID: "pY", Quantity: d("5")},
		},
	})
	require.NoError(t, err)

	edited, err := uc.Edit(context.Background(), "op-2", m.ID, dto.EditManifestRequest{
		Items: []dto.ManifestItemRequest{
			{ProductID: "pX", Quantity: d("15")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, edited.Items, 1)

	// pX: 50 - 10 - 5 = 35; pY: 20 - 5 + 5 = 20 (restaurado completo)
	assert.True(t, store.StockQty("pX", "src").Equal(d("35")))
	assert.True(t, store.StockQty("pY", "src").Equal(d("20")))
}

func TestEdit_DiffNegativoRestaura(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)

	_, err = uc.Edit(context.Background(), "op-1", m.ID, dto.EditManifestRequest{
		Items: []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("4")}},
	})
	require.NoError(t, err)
	// 50 - 10 + 6 = 46
	assert.True(t, store.StockQty("pX", "src").Equal(d("46")))
}

func TestEdit_FaltanteRevierteEdicion(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)

	_, err = uc.Edit(context.Background(), "op-1", m.ID, dto.EditManifestRequest{
		Items: []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("100")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Estado intacto: la reserva original sigue siendo 10.
	assert.True(t, store.StockQty("pX", "src").Equal(d("40")))
	items := store.ManifestItems[m.ID]
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.Equal(d("10")))
}

// Aprobación con conversión de moneda: 10 unidades a precio canónico 100 INR,
// manifiesto en AED con tasa 0.044 -> el destino recibe 10 @ 4.40 AED.
func TestApprove_ConversionDeMoneda(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)

	rate := d("0.044")
	approved, err := uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{
		DestinationLocationID: "dst",
		Currency:              "AED",
		ExchangeRate:          &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ManifestStatusApproved, approved.Status)
	assert.Equal(t, "boss-1", approved.ApprovedBy)

	entry := store.StockEntry("pX", "dst")
	require.NotNil(t, entry)
	assert.True(t, entry.Quantity.Equal(d("10")))
	assert.True(t, entry.UnitPrice.Equal(d("4.4")), "precio convertido: %s", entry.UnitPrice)
	assert.Equal(t, "AED", entry.Currency)
	assert.Equal(t, m.ID, entry.ManifestID)

	// Sin la opción de repreciado, el catálogo conserva su precio canónico.
	assert.True(t, store.Products["pX"].UnitPrice.Equal(d("100")))
	assert.Equal(t, "INR", store.Products["pX"].Currency)
}

func TestApprove_RepreciaCatalogoConOpcion(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{RepriceCatalogOnApproval: true})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)

	rate := d("0.044")
	_, err = uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{
		DestinationLocationID: "dst",
		Currency:              "AED",
		ExchangeRate:          &rate,
	})
	require.NoError(t, err)

	assert.True(t, store.Products["pX"].UnitPrice.Equal(d("4.4")))
	assert.Equal(t, "AED", store.Products["pX"].Currency)
}

func TestApprove_MismaMonedaSinConversion(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("3")}},
	})
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{
		DestinationLocationID: "dst",
		Currency:              "INR",
	})
	require.NoError(t, err)

	entry := store.StockEntry("pX", "dst")
	require.NotNil(t, entry)
	assert.True(t, entry.UnitPrice.Equal(d("100")))
	assert.Equal(t, "INR", entry.Currency)
}

// Aprobar dos veces falla con conflicto, no re-aplica.
func TestApprove_DobleAprobacionFalla(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{DestinationLocationID: "dst"})
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{DestinationLocationID: "dst"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, store.StockQty("pX", "dst").Equal(d("10")), "el destino no debe duplicarse")
}

// Dos aprobaciones simultáneas del mismo manifiesto: el encabezado se bloquea
// dentro de la transacción, la que pierde la carrera lee el estado approved ya
// committeado y falla con conflicto. El destino se acredita exactamente una vez.
func TestApprove_ConcurrenteAcreditaUnaVez(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{DestinationLocationID: "dst"})
		}(i)
	}
	wg.Wait()

	oks, conflicts := 0, 0
	for _, e := range errs {
		switch {
		case e == nil:
			oks++
		case errors.Is(e, domain.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, oks, "exactamente una aprobación debe ganar")
	assert.Equal(t, 1, conflicts, "la otra debe ver el conflicto")
	assert.True(t, store.StockQty("pX", "dst").Equal(d("10")), "el destino se acredita una sola vez")
	assert.True(t, store.StockQty("pX", "src").Equal(d("40")))
}

func TestApprove_SinDestino(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})
	_, err := uc.Approve(context.Background(), "boss-1", "whatever", dto.ApproveManifestRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEdit_AprobadoNoSeEdita(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)
	_, err = uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{DestinationLocationID: "dst"})
	require.NoError(t, err)

	_, err = uc.Edit(context.Background(), "op-1", m.ID, dto.EditManifestRequest{
		Items: []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Borrar un draft restaura el último estado persistido exactamente una vez,
// sin importar cuántas ediciones hubo.
func TestDelete_RestauraUltimoEstadoPersistido(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)

	_, err = uc.Edit(context.Background(), "op-1", m.ID, dto.EditManifestRequest{
		Items: []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("7")}},
	})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), "op-1", m.ID))

	assert.True(t, store.StockQty("pX", "src").Equal(d("50")), "el origen vuelve a su estado inicial")
	assert.Empty(t, store.Manifests)
	assert.Empty(t, store.ManifestItems[m.ID])
}

func TestDelete_AprobadoNoSeBorra(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})

	m, err := uc.Create(context.Background(), "op-1", dto.CreateManifestRequest{
		SourceLocationID: "src",
		Items:            []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("10")}},
	})
	require.NoError(t, err)
	_, err = uc.Approve(context.Background(), "boss-1", m.ID, dto.ApproveManifestRequest{DestinationLocationID: "dst"})
	require.NoError(t, err)

	err = uc.Delete(context.Background(), "op-1", m.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_Validaciones(t *testing.T) {
	store := seedTransferStore()
	uc := newTransferUC(store, transfer.Options{})
	ctx := context.Background()

	_, err := uc.Create(ctx, "op", dto.CreateManifestRequest{SourceLocationID: "nope",
		Items: []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("1")}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Create(ctx, "op", dto.CreateManifestRequest{SourceLocationID: "src"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "op", dto.CreateManifestRequest{SourceLocationID: "src",
		Items: []dto.ManifestItemRequest{{ProductID: "pX", Quantity: d("0")}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "op", dto.CreateManifestRequest{SourceLocationID: "src",
		Items: []dto.ManifestItemRequest{{ProductID: "ghost", Quantity: d("1")}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

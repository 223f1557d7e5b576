package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soditex/almacen-api/internal/application/apptest"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedStore() *apptest.Store {
	store := apptest.NewStore()
	store.Products["p1"] = &entity.Product{ID: "p1", SKU: "SKU-1", Name: "Tornillo", UnitPrice: d("100"), Currency: "COP"}
	store.Locations["l1"] = &entity.Location{ID: "l1", Name: "Bodega Central", Role: entity.LocationRoleIntake}
	return store
}

// increment(D) sobre Q da Q+D; crea la entrada si no existe.
func TestIncrementInTx_CreaYSuma(t *testing.T) {
	store := seedStore()
	repo := apptest.NewStockRepo(store)
	now := time.Now()

	entry, err := ledger.IncrementInTx(repo, "p1", "l1", d("5"), "user-1", now)
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(d("5")))

	entry, err = ledger.IncrementInTx(repo, "p1", "l1", d("3"), "user-1", now)
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(d("8")))
	assert.Equal(t, "user-1", entry.LastUpdatedBy)
}

func TestIncrementInTx_DeltaNegativo(t *testing.T) {
	store := seedStore()
	_, err := ledger.IncrementInTx(apptest.NewStockRepo(store), "p1", "l1", d("-1"), "user-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// decrement(D) con D<=Q da Q-D; con D>Q falla sin mutar y reporta
// disponible vs solicitado.
func TestDecrementInTx_Suficiente(t *testing.T) {
	store := seedStore()
	repo := apptest.NewStockRepo(store)
	now := time.Now()
	_, err := ledger.IncrementInTx(repo, "p1", "l1", d("10"), "user-1", now)
	require.NoError(t, err)

	entry, err := ledger.DecrementInTx(repo, "p1", "l1", d("4"), "user-2", now)
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(d("6")))
	assert.Equal(t, "user-2", entry.LastUpdatedBy)
}

func TestDecrementInTx_Insuficiente(t *testing.T) {
	store := seedStore()
	repo := apptest.NewStockRepo(store)
	now := time.Now()
	_, err := ledger.IncrementInTx(repo, "p1", "l1", d("3"), "user-1", now)
	require.NoError(t, err)

	_, err = ledger.DecrementInTx(repo, "p1", "l1", d("5"), "user-1", now)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.True(t, insErr.Available.Equal(d("3")))
	assert.True(t, insErr.Requested.Equal(d("5")))

	// La cantidad no cambió (la falla es atómica).
	assert.True(t, store.StockQty("p1", "l1").Equal(d("3")))
}

func TestDecrementInTx_EntradaAusente(t *testing.T) {
	store := seedStore()
	tx := apptest.NewTxRunner(store)
	err := tx.Run(context.Background(), func(stockRepo repository.StockRepository) error {
		_, err := ledger.DecrementInTx(stockRepo, "p1", "l1", d("1"), "user-1", time.Now())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, store.StockEntry("p1", "l1"), "el rollback descarta la fila sembrada en cero")
}

// El bloqueo de una entrada ausente la materializa en cero: la primera escritura
// de un par (producto, ubicación) también pasa por una fila persistida.
func TestGetForUpdate_MaterializaEntradaEnCero(t *testing.T) {
	store := seedStore()
	repo := apptest.NewStockRepo(store)

	entry, err := repo.GetForUpdate("p1", "l1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Quantity.IsZero())

	stored := store.StockEntry("p1", "l1")
	require.NotNil(t, stored, "la fila debe quedar persistida, no ser un valor suelto")
	assert.True(t, stored.Quantity.IsZero())
}

// Dos primeras escrituras simultáneas sobre un par sin fila: ambas serializan
// sobre la fila materializada y los deltas se acumulan, ninguno se pierde.
func TestIncrementInTx_PrimerasEscriturasConcurrentes(t *testing.T) {
	store := seedStore()
	tx := apptest.NewTxRunner(store)
	now := time.Now()

	deltas := []decimal.Decimal{d("5"), d("3")}
	errs := make([]error, len(deltas))
	var wg sync.WaitGroup
	for i, delta := range deltas {
		wg.Add(1)
		go func(i int, delta decimal.Decimal) {
			defer wg.Done()
			errs[i] = tx.Run(context.Background(), func(stockRepo repository.StockRepository) error {
				_, err := ledger.IncrementInTx(stockRepo, "p1", "l1", delta, "user-1", now)
				return err
			})
		}(i, delta)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.True(t, store.StockQty("p1", "l1").Equal(d("8")), "ningún abono debe perderse")
}

// La cantidad nunca es negativa tras cualquier secuencia de operaciones.
func TestLedger_NoNegatividad(t *testing.T) {
	store := seedStore()
	repo := apptest.NewStockRepo(store)
	now := time.Now()

	ops := []struct {
		delta string
		inc   bool
	}{
		{"5", true}, {"3", false}, {"10", false}, {"2", true}, {"4", false}, {"1", false},
	}
	for _, op := range ops {
		if op.inc {
			_, err := ledger.IncrementInTx(repo, "p1", "l1", d(op.delta), "u", now)
			require.NoError(t, err)
		} else {
			_, _ = ledger.DecrementInTx(repo, "p1", "l1", d(op.delta), "u", now)
		}
		assert.False(t, store.StockQty("p1", "l1").IsNegative(), "cantidad negativa tras delta %s", op.delta)
	}
	// 5 - 3 (10 falla) + 2 - 4 (1 resta) -> 0
	assert.True(t, store.StockQty("p1", "l1").IsZero())
}

func TestAdjust_OverrideAbsoluto(t *testing.T) {
	store := seedStore()
	uc := ledger.NewUseCase(apptest.NewTxRunner(store), apptest.NewStockRepo(store), apptest.NewProductRepo(store))

	entry, err := uc.Adjust(context.Background(), "admin", "p1", "l1", d("42"))
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(d("42")))
	assert.Equal(t, "admin", entry.LastUpdatedBy)

	// Sobreescribe, no suma.
	entry, err = uc.Adjust(context.Background(), "admin", "p1", "l1", d("7"))
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(d("7")))
}

func TestAdjust_CantidadNegativa(t *testing.T) {
	store := seedStore()
	uc := ledger.NewUseCase(apptest.NewTxRunner(store), apptest.NewStockRepo(store), apptest.NewProductRepo(store))
	_, err := uc.Adjust(context.Background(), "admin", "p1", "l1", d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjust_ProductoInexistente(t *testing.T) {
	store := seedStore()
	uc := ledger.NewUseCase(apptest.NewTxRunner(store), apptest.NewStockRepo(store), apptest.NewProductRepo(store))
	_, err := uc.Adjust(context.Background(), "admin", "nope", "l1", d("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_EntradaInexistente(t *testing.T) {
	store := seedStore()
	uc := ledger.NewUseCase(apptest.NewTxRunner(store), apptest.NewStockRepo(store), apptest.NewProductRepo(store))
	_, err := uc.Get(context.Background(), "p1", "l1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// upsertPricing recalcula el precio de venta desde el precio base canónico y el
// margen; la cantidad no cambia.
func TestUpsertPricing_CalculaPrecioDeVenta(t *testing.T) {
	store := seedStore()
	uc := ledger.NewUseCase(apptest.NewTxRunner(store), apptest.NewStockRepo(store), apptest.NewProductRepo(store))

	entry, err := uc.UpsertPricing(context.Background(), "admin", "p1", "l1", d("20"), "COP")
	require.NoError(t, err)
	// base 100 + 20% -> 120
	assert.True(t, entry.UnitPrice.Equal(d("120")), "precio: %s", entry.UnitPrice)
	assert.True(t, entry.MarginPercent.Equal(d("20")))
	assert.Equal(t, "COP", entry.Currency)
	assert.True(t, entry.Quantity.IsZero(), "fijar precio no abona cantidades")
}

func TestUpsertPricing_MargenNegativo(t *testing.T) {
	store := seedStore()
	uc := ledger.NewUseCase(apptest.NewTxRunner(store), apptest.NewStockRepo(store), apptest.NewProductRepo(store))
	_, err := uc.UpsertPricing(context.Background(), "admin", "p1", "l1", d("-5"), "COP")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

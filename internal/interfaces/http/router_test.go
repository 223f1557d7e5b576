package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soditex/almacen-api/internal/application/apptest"
	"github.com/soditex/almacen-api/internal/application/dto"
	"github.com/soditex/almacen-api/internal/application/intake"
	"github.com/soditex/almacen-api/internal/application/issuance"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/application/transfer"
	"github.com/soditex/almacen-api/internal/domain/entity"
	apphttp "github.com/soditex/almacen-api/internal/interfaces/http"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func buildRouterApp() (*fiber.App, *apptest.Store) {
	store := apptest.NewStore()
	store.Products["pX"] = &entity.Product{ID: "pX", SKU: "SKU-X", Name: "Lámpara", UnitPrice: d("100"), Currency: "INR"}
	store.Locations["src"] = &entity.Location{ID: "src", Name: "Bodega Origen", Role: entity.LocationRoleIntake}
	store.Locations["dst"] = &entity.Location{ID: "dst", Name: "Tienda Destino", Role: entity.LocationRoleStore}
	store.Stock["pX|src"] = &entity.StockEntry{ProductID: "pX", LocationID: "src", Quantity: d("50"), Currency: "INR", UnitPrice: d("100")}

	txRunner := apptest.NewTxRunner(store)
	productRepo := apptest.NewProductRepo(store)
	locationRepo := apptest.NewLocationRepo(store)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		QualityCheckUC: intake.NewSubmitQualityCheckUseCase(txRunner, productRepo, locationRepo),
		ManifestUC:     transfer.NewManifestUseCase(txRunner, apptest.NewManifestRepo(store), productRepo, locationRepo, transfer.Options{}),
		InvoiceUC:      issuance.NewInvoiceUseCase(txRunner, apptest.NewInvoiceRepo(store), productRepo, locationRepo),
		StockUC:        ledger.NewUseCase(txRunner, apptest.NewStockRepo(store), productRepo),
		JWTSecret:      testJWTSecret,
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path, authHeader, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

const manifestBody = `{"source_location_id":"src","items":[{"product_id":"pX","quantity":"10"}]}`

// Las mutaciones exigen el rol del recurso; un rol ajeno recibe 403 aunque el
// token sea válido.
func TestRouter_MutacionConRolAjenoEsForbidden(t *testing.T) {
	app, _ := buildRouterApp()

	cases := []struct {
		name   string
		method string
		path   string
		role   string
	}{
		{"vendedor no crea manifiestos", http.MethodPost, "/api/manifests", "vendedor"},
		{"bodeguero no emite facturas", http.MethodPost, "/api/invoices", "bodeguero"},
		{"vendedor no ajusta stock", http.MethodPut, "/api/stock/adjust", "vendedor"},
		{"bodeguero no presenta inspecciones", http.MethodPost, "/api/quality-checks", "bodeguero"},
		{"inspector no aprueba manifiestos", http.MethodPost, "/api/manifests/m-1/approve", "inspector"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, tc.method, tc.path, tokenForRole(t, tc.role), "{}")
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Code)
		})
	}
}

// El rol dueño del recurso pasa la barrera y la operación se ejecuta.
func TestRouter_RolCorrectoCreaManifiesto(t *testing.T) {
	app, store := buildRouterApp()

	resp := doJSON(t, app, http.MethodPost, "/api/manifests", tokenForRole(t, "bodeguero"), manifestBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, store.StockQty("pX", "src").Equal(d("40")), "la reserva debe haberse aplicado")
}

// admin pasa en todos los recursos.
func TestRouter_AdminPasaEnTodosLosRecursos(t *testing.T) {
	app, _ := buildRouterApp()

	resp := doJSON(t, app, http.MethodPost, "/api/manifests", tokenForRole(t, "admin"), manifestBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/stock/adjust", tokenForRole(t, "admin"), "{}")
	assert.NotEqual(t, http.StatusForbidden, resp.StatusCode)
	assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode)
}

// Las lecturas solo piden token válido, no rol.
func TestRouter_LecturaSoloRequiereToken(t *testing.T) {
	app, _ := buildRouterApp()

	resp := doJSON(t, app, http.MethodGet, "/api/manifests/inexistente", tokenForRole(t, "vendedor"), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "pasa la barrera de rol y falla por no existir")

	resp = doJSON(t, app, http.MethodGet, "/api/manifests/inexistente", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "sin token no hay acceso")
}

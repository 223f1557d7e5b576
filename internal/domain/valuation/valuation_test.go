package valuation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/valuation"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Precio de venta: 100 con margen 20% debe dar 120.
func TestSellPrice_MargenBasico(t *testing.T) {
	price, err := valuation.SellPrice(d("100"), d("20"))
	require.NoError(t, err)
	assert.True(t, price.Equal(d("120")), "esperado 120, obtenido %s", price)
}

func TestSellPrice_MargenCero(t *testing.T) {
	price, err := valuation.SellPrice(d("59.90"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("59.90")))
}

func TestSellPrice_EntradasNegativas(t *testing.T) {
	_, err := valuation.SellPrice(d("-1"), d("20"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = valuation.SellPrice(d("100"), d("-5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Línea completa: 3 x 50 con 10% descuento y 5% IVA.
// gross=150, descuento=15, neto=135, iva=6.75, total=141.75.
func TestLineTotal_DescuentoEIVA(t *testing.T) {
	totals, err := valuation.LineTotal(d("3"), d("50"), d("10"), d("5"))
	require.NoError(t, err)

	assert.True(t, totals.Gross.Equal(d("150")), "gross: %s", totals.Gross)
	assert.True(t, totals.DiscountAmount.Equal(d("15")), "descuento: %s", totals.DiscountAmount)
	assert.True(t, totals.VATAmount.Equal(d("6.75")), "iva: %s", totals.VATAmount)
	assert.True(t, totals.Total.Equal(d("141.75")), "total: %s", totals.Total)
}

func TestLineTotal_SinDescuentoNiIVA(t *testing.T) {
	totals, err := valuation.LineTotal(d("2"), d("10"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, totals.Total.Equal(d("20")))
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.VATAmount.IsZero())
}

// El redondeo monetario es half-even a 2 decimales.
func TestLineTotal_RedondeoBancario(t *testing.T) {
	// 1 x 10.005 -> gross redondea a 10.00 (half-even sobre el 0)
	totals, err := valuation.LineTotal(d("1"), d("10.005"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, totals.Gross.Equal(d("10.00")), "gross: %s", totals.Gross)
}

func TestLineTotal_EntradasNegativas(t *testing.T) {
	cases := [][4]string{
		{"-1", "10", "0", "0"},
		{"1", "-10", "0", "0"},
		{"1", "10", "-1", "0"},
		{"1", "10", "0", "-1"},
	}
	for _, c := range cases {
		_, err := valuation.LineTotal(d(c[0]), d(c[1]), d(c[2]), d(c[3]))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestConvertPrice_TasaDeCambio(t *testing.T) {
	// 100 INR a tasa 0.044 -> 4.40 AED
	converted := valuation.ConvertPrice(d("100"), d("0.044"))
	assert.True(t, converted.Equal(d("4.4")), "convertido: %s", converted)
}

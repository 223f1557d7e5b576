package valuation

import (
	"github.com/shopspring/decimal"
	"github.com/soditex/almacen-api/internal/domain"
)

// Servicio de dominio puro: toda la aritmética monetaria del sistema pasa por aquí.
// Los montos se redondean half-even a 2 decimales; las cantidades nunca se redondean.

var hundred = decimal.NewFromInt(100)

// SellPrice calcula el precio de venta: base + base*margen/100.
// Retorna ErrInvalidInput si el precio base o el margen son negativos.
func SellPrice(basePrice, marginPercent decimal.Decimal) (decimal.Decimal, error) {
	if basePrice.LessThan(decimal.Zero) || marginPercent.LessThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	price := basePrice.Add(basePrice.Mul(marginPercent).Div(hundred))
	return price.RoundBank(2), nil
}

// LineTotals desglosa el total de una línea de factura.
type LineTotals struct {
	Gross          decimal.Decimal
	DiscountAmount decimal.Decimal
	VATAmount      decimal.Decimal
	Total          decimal.Decimal
}

// LineTotal calcula el total de una línea:
//
//	gross = cantidad * precio unitario
//	discount = gross * descuento% / 100
//	vat = (gross - discount) * iva% / 100
//	total = gross - discount + vat
//
// Retorna ErrInvalidInput si algún valor es negativo.
func LineTotal(quantity, unitPrice, discountPercent, vatPercent decimal.Decimal) (LineTotals, error) {
	if quantity.LessThan(decimal.Zero) || unitPrice.LessThan(decimal.Zero) ||
		discountPercent.LessThan(decimal.Zero) || vatPercent.LessThan(decimal.Zero) {
		return LineTotals{}, domain.ErrInvalidInput
	}
	gross := quantity.Mul(unitPrice).RoundBank(2)
	discount := gross.Mul(discountPercent).Div(hundred).RoundBank(2)
	netOfDiscount := gross.Sub(discount)
	vat := netOfDiscount.Mul(vatPercent).Div(hundred).RoundBank(2)
	return LineTotals{
		Gross:          gross,
		DiscountAmount: discount,
		VATAmount:      vat,
		Total:          netOfDiscount.Add(vat),
	}, nil
}

// ConvertPrice aplica una tasa de cambio a un precio unitario (aprobación de
// manifiestos entre monedas distintas).
func ConvertPrice(unitPrice, exchangeRate decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(exchangeRate).RoundBank(2)
}

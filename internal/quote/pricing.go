package quote

import (
	"deviseur/internal"
	"deviseur/internal/util"
)

const DefaultVATRate = 0.20

// ClampDiscount keeps a discount percentage within [0, 100].
func ClampDiscount(rate float64) float64 {
	return util.Clamp(rate, 0, 100)
}

// ParseDiscount reads a user-entered discount such as "12,5".
func ParseDiscount(raw string) float64 {
	return ClampDiscount(util.ParseFrenchNumber(raw))
}

func DiscountedUnitPrice(price, discountRate float64) float64 {
	return util.NonNegative(util.NonNegative(price) * (1 - ClampDiscount(discountRate)/100))
}

// LineFigures are the per-line amounts shown in the cart and the document.
type LineFigures struct {
	Quantity            float64 `json:"quantity"`
	UnitPrice           float64 `json:"unitPrice"`
	DiscountedUnitPrice float64 `json:"discountedUnitPrice"`
	UnitEcotax          float64 `json:"unitEcotax"`
	Subtotal            float64 `json:"subtotal"`
	DiscountedSubtotal  float64 `json:"discountedSubtotal"`
	Ecotax              float64 `json:"ecotax"`
	TotalWithEcotax     float64 `json:"totalWithEcotax"`
}

func Figures(line internal.LineItem, discountRate float64) LineFigures {
	qty := util.NonNegative(line.Quantity)
	price := util.NonNegative(line.Price)
	ecotax := util.NonNegative(line.Ecotax)
	discounted := DiscountedUnitPrice(price, discountRate)

	f := LineFigures{
		Quantity:            qty,
		UnitPrice:           price,
		DiscountedUnitPrice: discounted,
		UnitEcotax:          ecotax,
		Subtotal:            price * qty,
		DiscountedSubtotal:  discounted * qty,
		Ecotax:              ecotax * qty,
	}
	f.TotalWithEcotax = f.DiscountedSubtotal + f.Ecotax
	return f
}

// ComputeTotals recomputes the quote summary from scratch. Ecotax is added
// after the discount and is never discounted.
func ComputeTotals(lines []internal.LineItem, discountRate, vatRate float64) internal.Totals {
	discountRate = ClampDiscount(discountRate)
	vatRate = util.NonNegative(vatRate)

	t := internal.Totals{DiscountRate: discountRate, VATRate: vatRate}
	for _, line := range lines {
		qty := util.NonNegative(line.Quantity)
		t.ProductsSubtotal += util.NonNegative(line.Price) * qty
		t.EcotaxTotal += util.NonNegative(line.Ecotax) * qty
	}
	t.DiscountAmount = t.ProductsSubtotal * (discountRate / 100)
	t.Net = util.NonNegative(t.ProductsSubtotal - t.DiscountAmount + t.EcotaxTotal)
	t.VAT = t.Net * vatRate
	t.Total = t.Net + t.VAT
	return t
}

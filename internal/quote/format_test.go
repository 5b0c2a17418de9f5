package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deviseur/internal"
)

func TestFormatCurrency(t *testing.T) {
	cases := map[float64]string{
		0:          "0,00 €",
		1234.56:    "1 234,56 €",
		1234567.5:  "1 234 567,50 €",
		999.999:    "1 000,00 €",
		0.005:      "0,01 €",
		-3.5:       "-3,50 €",
		40.2:       "40,20 €",
		100:        "100,00 €",
		123456.789: "123 456,79 €",
	}
	for input, want := range cases {
		assert.Equal(t, want, FormatCurrency(input), "%v", input)
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "10", FormatQuantity(10))
	assert.Equal(t, "2,5", FormatQuantity(2.5))
	assert.Equal(t, "0,33", FormatQuantity(1.0/3))
	assert.Equal(t, "1 250", FormatQuantity(1250))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12,50 %", FormatPercent(12.5))
	assert.Equal(t, "0,00 %", FormatPercent(0))
}

func TestFormatQuantityLabel(t *testing.T) {
	area := internal.LineItem{Product: internal.Product{QuantityMode: internal.QuantityArea}, Quantity: 2.5}
	assert.Equal(t, "2,5 m²", FormatQuantityLabel(area))

	perArticle := internal.LineItem{Product: internal.Product{QuantityMode: internal.QuantityUnit}, Quantity: 3}
	assert.Equal(t, "3 u.", FormatQuantityLabel(perArticle))
	perArticle.Unit = "Unité"
	assert.Equal(t, "3 u.", FormatQuantityLabel(perArticle))

	rolls := internal.LineItem{Product: internal.Product{QuantityMode: internal.QuantityUnit, Unit: "Rouleau"}, Quantity: 4}
	assert.Equal(t, "4 Rouleau", FormatQuantityLabel(rolls))
}

func TestProductLabels(t *testing.T) {
	assert.Equal(t, "Ecopart : 0,10 € / m²", FormatEcotaxUnit(dalle))
	assert.Equal(t, "Ecopart : 0,50 € / pièce", FormatEcotaxUnit(chaise))
	assert.Equal(t, "Ecopart : 0,00 € / pièce", FormatEcotaxUnit(internal.Product{}))

	assert.Equal(t, "m²", UnitLabel(dalle))
	assert.Equal(t, "Pièce", UnitLabel(internal.Product{}))

	assert.Equal(t, "", FormatWeightLabel(0))
	assert.Equal(t, "Poids unitaire : 4,20 kg", FormatWeightLabel(4.2))

	assert.Equal(t, "N.C.", ScoreLabel(""))
	assert.Equal(t, "A", ScoreLabel("A"))
}

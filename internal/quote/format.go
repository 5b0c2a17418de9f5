package quote

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"deviseur/internal"
	"deviseur/internal/util"
)

var reUnite = regexp.MustCompile(`(?i)unité`)

// FormatCurrency renders an amount the French way, e.g. "1 234,56 €".
func FormatCurrency(v float64) string {
	return formatFixed(v, 2) + " €"
}

// FormatNumber renders v with exactly two decimals, e.g. "4,20".
func FormatNumber(v float64) string {
	return formatFixed(v, 2)
}

// FormatQuantity renders up to two decimals, dropping trailing zeros.
func FormatQuantity(v float64) string {
	d := decimal.NewFromFloat(util.Finite(v)).Round(2)
	return frenchDigits(d.String())
}

// FormatPercent renders a rate given in percent, e.g. "12,50 %".
func FormatPercent(rate float64) string {
	return formatFixed(rate, 2) + " %"
}

func formatFixed(v float64, places int32) string {
	d := decimal.NewFromFloat(util.Finite(v)).Round(places)
	return frenchDigits(d.StringFixed(places))
}

// frenchDigits turns "-1234.5" into "-1 234,5".
func frenchDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "," + frac
	}
	return out
}

// FormatQuantityLabel renders a line quantity with its unit: "2,5 m²",
// "3 u." or "4 Rouleau".
func FormatQuantityLabel(line internal.LineItem) string {
	qty := FormatQuantity(line.Quantity)
	if line.QuantityMode == internal.QuantityArea {
		unit := line.Unit
		if unit == "" {
			unit = "m²"
		}
		return qty + " " + unit
	}
	if line.Unit == "" || reUnite.MatchString(line.Unit) {
		return qty + " u."
	}
	return qty + " " + line.Unit
}

// UnitLabel is the unit column of the document.
func UnitLabel(p internal.Product) string {
	if p.QuantityMode == internal.QuantityArea {
		return "m²"
	}
	if p.Unit == "" {
		return "Pièce"
	}
	return p.Unit
}

func FormatEcotaxUnit(p internal.Product) string {
	amount := FormatCurrency(util.NonNegative(p.Ecotax))
	if p.QuantityMode == internal.QuantityArea {
		return "Ecopart : " + amount + " / m²"
	}
	unit := "pièce"
	if p.Unit != "" {
		unit = strings.ToLower(p.Unit)
	}
	return "Ecopart : " + amount + " / " + unit
}

// FormatWeightLabel is empty when the weight is not communicated.
func FormatWeightLabel(weight float64) string {
	if util.NonNegative(weight) == 0 {
		return ""
	}
	return "Poids unitaire : " + FormatNumber(weight) + " kg"
}

// ScoreLabel renders the Positiv'ID score, "N.C." when not rated.
func ScoreLabel(score string) string {
	if badge := util.ScoreBadge(score); badge != "NR" {
		return badge
	}
	return "N.C."
}

package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deviseur/internal"
	"deviseur/internal/quote"
)

var ErrEmptyQuote = errors.New("quote has no lines")

// MsgEmptyQuote is shown when an export is attempted on an empty cart.
const MsgEmptyQuote = "Ajoutez au moins un article avant de générer le devis."

const (
	Title        = "DEVIS COMMERCIAL"
	IntroFrench  = "Cher Client, Nous avons bien reçu votre demande de devis et nous vous en remercions. Vous trouverez ci-dessous nos meilleures conditions."
	IntroEnglish = "Dear Customer, We well received your request and we thank you for that. Please find below our best price offer."
)

var Columns = []string{"Nos réf.", "Désignation", "Qté", "Unité", "PU HT", "% Remise", "Montant HT", "Éco-part"}

var DefaultShipping = []string{
	"Indiquez le lieu de livraison",
	"Adresse complète",
	"Code postal - Ville",
	"Pays",
}

type Input struct {
	Lines          []internal.LineItem
	DiscountRate   float64
	VATRate        float64
	GeneralComment string
	Shipping       []string
	Logo           []byte
}

type Line struct {
	Item    internal.LineItem
	Figures quote.LineFigures
	Details []string
}

// Quote is everything a rendered quote document shows.
type Quote struct {
	Number         string
	IssuedAt       time.Time
	ValidUntil     time.Time
	Company        internal.CompanyIdentity
	Shipping       []string
	Logo           []byte
	Lines          []Line
	Totals         internal.Totals
	GeneralComment string
}

type SummaryRow struct {
	Label string
	Value string
}

// Build assembles the document values. It fails with ErrEmptyQuote when
// there is nothing to quote.
func Build(in Input, company internal.CompanyIdentity, validityDays int, now time.Time) (Quote, error) {
	if len(in.Lines) == 0 {
		return Quote{}, ErrEmptyQuote
	}

	q := Quote{
		Number:         Number(now),
		IssuedAt:       now,
		ValidUntil:     now.AddDate(0, 0, validityDays),
		Company:        company,
		Shipping:       in.Shipping,
		Logo:           in.Logo,
		Totals:         quote.ComputeTotals(in.Lines, in.DiscountRate, in.VATRate),
		GeneralComment: strings.TrimSpace(in.GeneralComment),
	}
	if len(q.Shipping) == 0 {
		q.Shipping = DefaultShipping
	}
	for _, item := range in.Lines {
		f := quote.Figures(item, q.Totals.DiscountRate)
		q.Lines = append(q.Lines, Line{Item: item, Figures: f, Details: details(item, f)})
	}
	return q, nil
}

// Number is the quote reference for an issue time, e.g. DEV-20260301-0930.
func Number(t time.Time) string {
	return "DEV-" + t.Format("20060102-1504")
}

func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// details are the designation lines. They carry the gross unit price and
// the line ecotax, which have no column of their own.
func details(item internal.LineItem, f quote.LineFigures) []string {
	out := []string{item.Name}
	if item.QuantityMode == internal.QuantityArea {
		out = append(out,
			fmt.Sprintf("Dimensions : %s m x %s m", quote.FormatNumber(item.Length), quote.FormatNumber(item.Width)),
			fmt.Sprintf("Surface calculée : %s m²", quote.FormatQuantity(item.Quantity)),
		)
	}
	if item.Comment != "" {
		out = append(out, "Commentaire : "+item.Comment)
	}
	if item.Link != "" {
		out = append(out, "Lien : "+item.Link)
	}
	out = append(out,
		"PU HT brut : "+quote.FormatCurrency(f.UnitPrice),
		"Écopart unitaire : "+quote.FormatCurrency(f.UnitEcotax),
		"Éco-part ligne : "+quote.FormatCurrency(f.Ecotax),
		"Total ligne avec éco-part : "+quote.FormatCurrency(f.TotalWithEcotax),
	)
	if weight := quote.FormatWeightLabel(item.Weight); weight != "" {
		out = append(out, weight)
	}
	out = append(out, "Score Positiv'ID : "+quote.ScoreLabel(item.Score))
	return out
}

// Cells are the table columns of a line, in Columns order.
func (q Quote) Cells(l Line) []string {
	discount := "—"
	if q.Totals.DiscountRate > 0 {
		discount = quote.FormatPercent(q.Totals.DiscountRate)
	}
	return []string{
		l.Item.Reference,
		strings.Join(l.Details, "\n"),
		quote.FormatQuantity(l.Figures.Quantity),
		quote.UnitLabel(l.Item.Product),
		quote.FormatCurrency(l.Figures.DiscountedUnitPrice),
		discount,
		quote.FormatCurrency(l.Figures.DiscountedSubtotal),
		quote.FormatCurrency(l.Figures.UnitEcotax),
	}
}

// InfoLines is the "quote details" block.
func (q Quote) InfoLines() []string {
	return []string{
		"Validité de l'offre : " + FormatDate(q.ValidUntil),
		"Remise commerciale : " + quote.FormatPercent(q.Totals.DiscountRate),
		"TVA : " + quote.FormatPercent(q.Totals.VATRate*100),
		q.Company.PaymentTerms,
		q.Company.DeliveryLead,
	}
}

func (q Quote) Summary() []SummaryRow {
	t := q.Totals
	discount := quote.FormatCurrency(0)
	if t.DiscountAmount > 0 {
		discount = "-" + quote.FormatCurrency(t.DiscountAmount)
	}
	return []SummaryRow{
		{Label: "Total HT (hors éco-part)", Value: quote.FormatCurrency(t.BaseAfterDiscount())},
		{Label: "Remise commerciale (" + quote.FormatPercent(t.DiscountRate) + ")", Value: discount},
		{Label: "Éco-participation HT", Value: quote.FormatCurrency(t.EcotaxTotal)},
		{Label: "Total HT", Value: quote.FormatCurrency(t.Net)},
		{Label: "TVA (" + quote.FormatPercent(t.VATRate*100) + ")", Value: quote.FormatCurrency(t.VAT)},
		{Label: "Acompte", Value: quote.FormatCurrency(0)},
		{Label: "Escompte", Value: quote.FormatCurrency(0)},
		{Label: "Total TTC", Value: quote.FormatCurrency(t.Total)},
		{Label: "Net à payer", Value: quote.FormatCurrency(t.Total)},
	}
}

// FileName is the default download name, e.g. devis-DEV-20260301-0930.pdf.
func (q Quote) FileName(ext string) string {
	return "devis-" + q.Number + "." + ext
}

// writeAtomic writes content next to path and renames it into place, so a
// failed export never leaves a partial file behind.
func writeAtomic(path string, write func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

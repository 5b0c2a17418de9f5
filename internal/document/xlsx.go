package document

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const quoteSheet = "Devis"

// RenderXLSX lays the quote out on one sheet: header block, lines table and
// the financial summary. Amounts are stored as numbers.
func RenderXLSX(q Quote) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), quoteSheet); err != nil {
		return nil, err
	}

	r := 1
	set := func(col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, r)
		_ = f.SetCellValue(quoteSheet, cell, value)
	}

	set(1, Title)
	r++
	set(1, "Référence")
	set(2, q.Number)
	r++
	set(1, "Émis le")
	set(2, FormatDate(q.IssuedAt))
	r++
	set(1, "Validité de l'offre")
	set(2, FormatDate(q.ValidUntil))
	r++
	set(1, "Émetteur")
	set(2, q.Company.Name)
	r += 2

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, err
	}

	headers := append([]string{}, Columns...)
	headers = append(headers, "Prix unitaire HT", "Éco-part ligne")
	for i, h := range headers {
		set(i+1, h)
	}
	if err := styleRow(f, r, len(headers), bold); err != nil {
		return nil, err
	}
	r++

	for _, l := range q.Lines {
		cells := q.Cells(l)
		set(1, cells[0])
		set(2, cells[1])
		set(3, l.Figures.Quantity)
		set(4, cells[3])
		set(5, round2(l.Figures.DiscountedUnitPrice))
		set(6, cells[5])
		set(7, round2(l.Figures.DiscountedSubtotal))
		set(8, round2(l.Figures.UnitEcotax))
		set(9, round2(l.Figures.UnitPrice))
		set(10, round2(l.Figures.Ecotax))

		cell, _ := excelize.CoordinatesToCellName(2, r)
		_ = f.SetCellStyle(quoteSheet, cell, cell, wrap)
		for _, c := range []int{5, 7, 8, 9, 10} {
			cell, _ := excelize.CoordinatesToCellName(c, r)
			_ = f.SetCellStyle(quoteSheet, cell, cell, money)
		}
		r++
	}

	if q.GeneralComment != "" {
		r++
		set(1, "Commentaire général")
		set(2, q.GeneralComment)
		r++
	}

	r++
	for _, s := range q.Summary() {
		set(1, s.Label)
		set(2, s.Value)
		r++
	}

	_ = f.SetColWidth(quoteSheet, "A", "A", 26)
	_ = f.SetColWidth(quoteSheet, "B", "B", 48)
	_ = f.SetColWidth(quoteSheet, "C", "J", 14)
	return f, nil
}

// WriteXLSX saves the quote workbook to path. Nothing is written when
// rendering fails.
func WriteXLSX(q Quote, path string) error {
	f, err := RenderXLSX(q)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeAtomic(path, func(out *os.File) error {
		_, err := f.WriteTo(out)
		return err
	})
}

func styleRow(f *excelize.File, r, cols, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, r)
	last, _ := excelize.CoordinatesToCellName(cols, r)
	return f.SetCellStyle(quoteSheet, first, last, style)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

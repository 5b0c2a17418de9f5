package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	accent    = &props.Color{Red: 228, Green: 30, Blue: 40}
	secondary = &props.Color{Red: 25, Green: 63, Blue: 96}
	muted     = &props.Color{Red: 102, Green: 112, Blue: 133}
)

// column widths on the 12-unit grid, in Columns order
var columnSizes = []int{2, 3, 1, 1, 1, 1, 2, 1}

const detailLineHeight = 3.6

// RenderPDF renders the quote as an A4 PDF.
func RenderPDF(q Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	addHeader(m, q)
	addInfo(m, q)
	addTable(m, q)
	addSummary(m, q)
	addFooter(m, q)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// WritePDF renders the quote to path. Nothing is written when rendering
// fails.
func WritePDF(q Quote, path string) error {
	blob, err := RenderPDF(q)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(blob)
		return err
	})
}

func addHeader(m core.Maroto, q Quote) {
	if ext, ok := imageExtension(q.Logo); ok {
		m.AddRows(row.New(16).Add(
			col.New(9),
			col.New(3).Add(image.NewFromBytes(q.Logo, ext)),
		))
	}

	m.AddRow(9,
		text.NewCol(7, Title, props.Text{Size: 16, Style: fontstyle.Bold, Color: secondary}),
		text.NewCol(5, "Émetteur", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Color: muted}),
	)

	left := []string{q.Company.BrandCode, "Émis le " + FormatDate(q.IssuedAt), "Référence : " + q.Number}
	right := append([]string{q.Company.Name}, q.Company.Address...)
	m.AddRows(row.New(lineBlockHeight(max(len(left), len(right)))).Add(
		textBlock(7, left, props.Text{Size: 9}),
		textBlock(5, right, props.Text{Size: 9, Align: align.Right}),
	))
	m.AddRows(line.NewRow(4))
}

func addInfo(m core.Maroto, q Quote) {
	m.AddRow(7,
		text.NewCol(6, "Lieu de livraison / Shipping address", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(6, "Informations devis / Quote details", props.Text{Size: 9, Style: fontstyle.Bold}),
	)
	info := q.InfoLines()
	m.AddRows(row.New(lineBlockHeight(max(len(q.Shipping), len(info)))).Add(
		textBlock(6, q.Shipping, props.Text{Size: 8.5, Color: muted}),
		textBlock(6, info, props.Text{Size: 8.5}),
	))

	m.AddRows(
		text.NewRow(7, "Message commercial", props.Text{Size: 9, Style: fontstyle.Bold, Top: 2}),
		text.NewRow(9, IntroFrench, props.Text{Size: 8.5}),
		text.NewRow(9, IntroEnglish, props.Text{Size: 8.5, Color: muted}),
	)
}

func addTable(m core.Maroto, q Quote) {
	header := row.New(8)
	for i, title := range Columns {
		header.Add(text.NewCol(columnSizes[i], title, props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Color: accent,
			Align: cellAlign(i),
			Top:   2,
		}))
	}
	m.AddRows(header, line.NewRow(1))

	for _, l := range q.Lines {
		cells := q.Cells(l)
		r := row.New(lineBlockHeight(len(l.Details)) + 2)
		for i, cell := range cells {
			ps := props.Text{Size: 7.5, Align: cellAlign(i), Top: 1}
			if i == 1 {
				r.Add(textBlock(columnSizes[i], strings.Split(cell, "\n"), ps))
				continue
			}
			r.Add(text.NewCol(columnSizes[i], cell, ps))
		}
		m.AddRows(r, line.NewRow(1))
	}
}

func addSummary(m core.Maroto, q Quote) {
	if q.GeneralComment != "" {
		lines := strings.Split(q.GeneralComment, "\n")
		m.AddRows(text.NewRow(7, "Commentaire général", props.Text{Size: 9, Style: fontstyle.Bold, Top: 2}))
		m.AddRows(row.New(lineBlockHeight(len(lines))).Add(textBlock(12, lines, props.Text{Size: 8.5})))
	}

	m.AddRows(text.NewRow(8, "Synthèse financière", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}))
	summary := q.Summary()
	for i, s := range summary {
		ps := props.Text{Size: 9}
		if i >= len(summary)-2 {
			ps.Style = fontstyle.Bold
			ps.Color = accent
		}
		value := ps
		value.Align = align.Right
		m.AddRow(5.5,
			text.NewCol(5, s.Label, ps),
			text.NewCol(3, s.Value, value),
			col.New(4),
		)
	}
}

func addFooter(m core.Maroto, q Quote) {
	m.AddRows(text.NewRow(8, q.Company.ToleranceNote, props.Text{Size: 8, Style: fontstyle.Italic, Top: 3}))
	if len(q.Company.Contacts) > 0 {
		m.AddRows(text.NewRow(6, "Contacts ID GROUP", props.Text{Size: 9, Style: fontstyle.Bold}))
		m.AddRows(row.New(lineBlockHeight(len(q.Company.Contacts))).Add(textBlock(12, q.Company.Contacts, props.Text{Size: 8})))
	}
	m.AddRows(line.NewRow(4))
	legal := append([]string{}, q.Company.LegalLines...)
	legal = append(legal, "Document généré le "+FormatDate(q.IssuedAt))
	m.AddRows(row.New(lineBlockHeight(len(legal))).Add(textBlock(12, legal, props.Text{Size: 7, Color: muted})))
}

// textBlock stacks one text component per line inside a single column.
func textBlock(size int, lines []string, ps props.Text) core.Col {
	c := col.New(size)
	base := ps.Top
	for i, l := range lines {
		p := ps
		p.Top = base + float64(i)*detailLineHeight
		c.Add(text.New(l, p))
	}
	return c
}

func lineBlockHeight(lines int) float64 {
	return float64(max(lines, 1))*detailLineHeight + 1.5
}

func cellAlign(column int) align.Type {
	switch column {
	case 2, 4, 5, 6, 7:
		return align.Right
	default:
		return align.Left
	}
}

func imageExtension(blob []byte) (extension.Type, bool) {
	switch {
	case bytes.HasPrefix(blob, []byte("\x89PNG\r\n\x1a\n")):
		return extension.Png, true
	case bytes.HasPrefix(blob, []byte{0xFF, 0xD8, 0xFF}):
		return extension.Jpg, true
	default:
		return "", false
	}
}

package catalog

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"deviseur/internal"
	"deviseur/internal/util"
)

// DetectFormat guesses the catalogue format from a file name or URL.
func DetectFormat(source string) internal.CatalogueFormat {
	name := source
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		return internal.FormatXLSX
	case ".html", ".htm":
		return internal.FormatHTML
	default:
		return internal.FormatCSV
	}
}

// Decode turns raw catalogue content into records.
func Decode(format internal.CatalogueFormat, content []byte, delimiter rune) ([]Record, error) {
	switch format {
	case internal.FormatCSV, "":
		return Parse(string(content), delimiter), nil
	case internal.FormatXLSX:
		return ReadXLSX(content)
	case internal.FormatHTML:
		return ReadHTMLTable(content)
	default:
		return nil, fmt.Errorf("unsupported catalogue format: %s", format)
	}
}

// ReadXLSX reads the first sheet that has a header row.
func ReadXLSX(content []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		rows = dropBlankRows(rows)
		if len(rows) == 0 {
			continue
		}
		return recordsFromCells(rows[0], rows[1:]), nil
	}
	return nil, nil
}

// ReadHTMLTable reads the first table with at least one header row.
func ReadHTMLTable(content []byte) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var out []Record
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := [][]string{}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			rows = append(rows, cells)
		})
		rows = dropBlankRows(rows)
		if len(rows) == 0 {
			return true
		}
		out = recordsFromCells(rows[0], rows[1:])
		return false
	})
	return out, nil
}

func recordsFromCells(header []string, body [][]string) []Record {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = util.Slugify(h)
	}
	return buildRecords(headers, body)
}

func dropBlankRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

package catalog

import (
	"regexp"
	"strings"

	"deviseur/internal/util"
)

const DefaultDelimiter = ';'

var reLineBreak = regexp.MustCompile(`\r?\n`)

// Record is one data row keyed by slugified header.
type Record map[string]string

// Parse tokenizes delimited text into records. The first non-blank line is
// the header. Short rows yield empty strings for the missing columns and
// extra cells are ignored.
func Parse(text string, delimiter rune) []Record {
	text = strings.TrimPrefix(text, "\ufeff")

	lines := make([]string, 0)
	for _, line := range reLineBreak.Split(text, -1) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	headers := SplitLine(lines[0], delimiter)
	for i, h := range headers {
		headers[i] = util.Slugify(h)
	}
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, SplitLine(line, delimiter))
	}
	return buildRecords(headers, rows)
}

func buildRecords(headers []string, rows [][]string) []Record {
	out := make([]Record, 0, len(rows))
	for _, cells := range rows {
		rec := make(Record, len(headers))
		for i, h := range headers {
			value := ""
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			rec[h] = value
		}
		out = append(out, rec)
	}
	return out
}

// SplitLine splits one line honoring double-quoted fields. A doubled quote
// inside a quoted field is a literal quote.
func SplitLine(line string, delimiter rune) []string {
	cells := make([]string, 0)
	var current strings.Builder
	insideQuotes := false

	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '"':
			if insideQuotes && i+1 < len(rs) && rs[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				insideQuotes = !insideQuotes
			}
		case r == delimiter && !insideQuotes:
			cells = append(cells, finishCell(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	cells = append(cells, finishCell(current.String()))
	return cells
}

// finishCell trims the cell and drops one outer quote on each side.
func finishCell(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, `"`)
	return strings.TrimSuffix(cell, `"`)
}

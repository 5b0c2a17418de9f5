package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeadersAndRows(t *testing.T) {
	text := "\ufeffRéf;Désignation;Prix;Unité\r\n" +
		"A1;\"Dalle; acoustique\";12,50;3\r\n" +
		"\r\n" +
		"B2;\"Chaise \"\"Confort\"\"\";40\n"

	records := Parse(text, DefaultDelimiter)
	require.Len(t, records, 2)

	assert.Equal(t, Record{"ref": "A1", "designation": "Dalle; acoustique", "prix": "12,50", "unite": "3"}, records[0])
	assert.Equal(t, `Chaise "Confort`, records[1]["designation"])
	assert.Equal(t, "", records[1]["unite"])
}

func TestParseBlankInput(t *testing.T) {
	assert.Empty(t, Parse("", DefaultDelimiter))
	assert.Empty(t, Parse("\n  \r\n", DefaultDelimiter))
}

func TestParseHeaderOnly(t *testing.T) {
	assert.Empty(t, Parse("ref;design\n", DefaultDelimiter))
}

func TestParseExtraCellsIgnored(t *testing.T) {
	records := Parse("ref,design\nA1,Dalle,extra,cells\n", ',')
	require.Len(t, records, 1)
	assert.Len(t, records[0], 2)
}

func TestSplitLine(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{line: "a;b;c", want: []string{"a", "b", "c"}},
		{line: " a ; b ;", want: []string{"a", "b", ""}},
		{line: `"a;b";c`, want: []string{"a;b", "c"}},
		{line: `"say ""hi""";x`, want: []string{`say "hi`, "x"}},
		{line: `"""Best"" seller";x`, want: []string{`Best" seller`, "x"}},
		{line: `  "padded"  ;x`, want: []string{"padded", "x"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SplitLine(tc.line, ';'), tc.line)
	}
}

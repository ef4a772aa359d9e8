package core_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/odf/pkg/core"
)

const sampleODF = `ODF_HEADER,
  FILE_SPECIFICATION = 'CTD_2019004_1_2A_DN',
CRUISE_HEADER,
  COUNTRY_INSTITUTE_CODE = 1810,
  PLATFORM = 'Ship A',
  CRUISE_DESCRIPTION = 'survey: depth=200m',
PARAMETER_HEADER,
  CODE = 'PRES_01',
  TYPE = 'DOUB',
  UNITS = 'decibars',
PARAMETER_HEADER,
  CODE = 'TEMP_01',
  TYPE = 'DOUB',
  UNITS = 'degrees C',
 -- DATA --
    1.0   7.23
    2.0   7.19
`

func TestParseHeader_Sample(t *testing.T) {
	tree, lines, err := core.ParseHeader(strings.NewReader(sampleODF), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"ODF_HEADER", "CRUISE_HEADER", "PARAMETER_HEADER"}, tree.Names())

	cruise, ok := tree.Get("CRUISE_HEADER")
	require.True(t, ok)
	assert.Equal(t, core.SectionSingle, cruise.Kind)
	assert.Equal(t, core.AttributeRecord{
		"COUNTRY_INSTITUTE_CODE": "1810",
		"PLATFORM":               "Ship A",
		"CRUISE_DESCRIPTION":     "survey: depth=200m",
	}, cruise.Single)

	params, ok := tree.Get("PARAMETER_HEADER")
	require.True(t, ok)
	assert.Equal(t, core.SectionMany, params.Kind)
	require.Len(t, params.Many, 2)
	assert.Equal(t, "TEMP_01", params.Many[1].Record["CODE"])

	assert.Equal(t, []string{"    1.0   7.23", "    2.0   7.19"}, lines)
}

func TestParseHeader_SingleSectionCollapses(t *testing.T) {
	for n := 0; n <= 4; n++ {
		var b strings.Builder
		b.WriteString("EVENT_HEADER,\n")
		for i := 0; i < n; i++ {
			b.WriteString("  KEY_")
			b.WriteByte(byte('A' + i))
			b.WriteString(" = value,\n")
		}
		b.WriteString(" -- DATA -- \n")

		tree, lines, err := core.ParseHeader(strings.NewReader(b.String()), "")
		require.NoError(t, err)
		assert.Empty(t, lines)
		require.Equal(t, 1, tree.Len())

		v, _ := tree.Get("EVENT_HEADER")
		assert.Equal(t, core.SectionSingle, v.Kind)
		assert.Len(t, v.Single, n)
	}
}

func TestParseHeader_RepeatedSectionStaysSequence(t *testing.T) {
	input := "HISTORY_HEADER,\n  CREATION_DATE = 'a',\nHISTORY_HEADER,\n  CREATION_DATE = 'b',\n -- DATA -- \n"
	tree, _, err := core.ParseHeader(strings.NewReader(input), "")
	require.NoError(t, err)

	v, _ := tree.Get("HISTORY_HEADER")
	require.Equal(t, core.SectionMany, v.Kind)
	require.Len(t, v.Many, 2)
	assert.Equal(t, "a", v.Many[0].Record["CREATION_DATE"])
	assert.Equal(t, "b", v.Many[1].Record["CREATION_DATE"])
}

func TestParseHeader_RepeatedEmptySections(t *testing.T) {
	input := "RECORD_HEADER\nRECORD_HEADER\n -- DATA -- \n"
	tree, _, err := core.ParseHeader(strings.NewReader(input), "")
	require.NoError(t, err)

	v, _ := tree.Get("RECORD_HEADER")
	assert.Equal(t, core.SectionMany, v.Kind)
	assert.Len(t, v.Many, 2)
}

func TestParseHeader_RawLines(t *testing.T) {
	input := "QUALITY_HEADER,\n  QUALITY_DATE = '01-JAN-2020',\n  checked by hand\n  QUALITY_CODE = 1\n -- DATA -- \n"
	tree, _, err := core.ParseHeader(strings.NewReader(input), "")
	require.NoError(t, err)

	v, _ := tree.Get("QUALITY_HEADER")
	require.Equal(t, core.SectionMany, v.Kind)
	require.Len(t, v.Many, 2)
	assert.False(t, v.Many[0].IsRaw())
	assert.True(t, v.Many[1].IsRaw())
	assert.Equal(t, core.RawLine("  checked by hand"), v.Many[1].Raw)

	// Attributes after a raw line extend the section's open record.
	assert.Equal(t, "1", v.Many[0].Record["QUALITY_CODE"])
	assert.Len(t, v.Records(), 1)
}

func TestParseHeader_Quoting(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"quoted", "'Ship A'", "Ship A"},
		{"unquoted", "Ship A", "Ship A"},
		{"empty quotes", "''", ""},
		{"single quote char", "'", "'"},
		{"inner quotes kept", "'it''s'", "it''s"},
		{"equals in value", "'a=b'", "a=b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := "S,\n  K = " + tc.value + ",\n -- DATA -- \n"
			tree, _, err := core.ParseHeader(strings.NewReader(input), "")
			require.NoError(t, err)
			v, _ := tree.Get("S")
			assert.Equal(t, tc.want, v.Single["K"])
		})
	}
}

func TestParseHeader_SplitsOnFirstEquals(t *testing.T) {
	input := "S\n  FORMULA = x = y + 1\n -- DATA -- \n"
	tree, _, err := core.ParseHeader(strings.NewReader(input), "")
	require.NoError(t, err)
	v, _ := tree.Get("S")
	assert.Equal(t, "x = y + 1", v.Single["FORMULA"])
}

func TestParseHeader_CRLF(t *testing.T) {
	input := "S,\r\n  K = 'v',\r\n -- DATA -- \r\n1 2\r\n"
	tree, lines, err := core.ParseHeader(strings.NewReader(input), "")
	require.NoError(t, err)
	v, _ := tree.Get("S")
	assert.Equal(t, "v", v.Single["K"])
	assert.Equal(t, []string{"1 2"}, lines)
}

func TestParseHeader_TerminatorVariants(t *testing.T) {
	for _, term := range []string{" -- DATA -- ", "-- DATA --", " -- DATA --   trailing", "\t-- DATA --\t"} {
		input := "S\n  K = v\n" + term + "\n1.0\n"
		_, lines, err := core.ParseHeader(strings.NewReader(input), "")
		require.NoError(t, err, "terminator %q", term)
		assert.Equal(t, []string{"1.0"}, lines)
	}
}

func TestParseHeader_CustomMarker(t *testing.T) {
	input := "S\n  K = v\n*END*\n1.0\n"
	_, lines, err := core.ParseHeader(strings.NewReader(input), "*END*")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0"}, lines)
}

func TestParseHeader_DataLinesVerbatim(t *testing.T) {
	input := "S\n -- DATA -- \n  1.0  2.0  \nS\n  K = v\n"
	tree, lines, err := core.ParseHeader(strings.NewReader(input), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"  1.0  2.0  ", "S", "  K = v"}, lines)
	v, _ := tree.Get("S")
	assert.Empty(t, v.Single)
}

func TestParseHeader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"blank line", "S\n\n -- DATA -- \n", 2},
		{"whitespace before section", "   \nS\n -- DATA -- \n", 1},
		{"punctuation start", "S\n'quoted section'\n -- DATA -- \n", 2},
		{"attribute before section", "  K = v\nS\n -- DATA -- \n", 1},
		{"comment before section", "  just words\n -- DATA -- \n", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree, lines, err := core.ParseHeader(strings.NewReader(tc.input), "")
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.Nil(t, lines)

			var hfe *core.HeaderFormatError
			require.True(t, errors.As(err, &hfe), "got %T", err)
			assert.Equal(t, tc.line, hfe.Line)
		})
	}
}

func TestParseHeader_Unterminated(t *testing.T) {
	tree, lines, err := core.ParseHeader(strings.NewReader("S\n  K = v\n1 2 3\n"), "")
	assert.ErrorIs(t, err, core.ErrUnterminatedHeader)
	assert.Nil(t, tree)
	assert.Nil(t, lines)
}

func TestMetadataTree_Plain(t *testing.T) {
	input := "A\n  K = 'v'\nB\n  X = 1\nB\n  X = 2\n  note\n -- DATA -- \n"
	tree, _, err := core.ParseHeader(strings.NewReader(input), "")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"A": map[string]any{"K": "v"},
		"B": []any{
			map[string]any{"X": "1"},
			map[string]any{"X": "2"},
			"  note",
		},
	}, tree.Plain())
}

func TestParseHeader_WhitespaceOnlyLineIsRaw(t *testing.T) {
	tree, lines, err := core.ParseHeader(strings.NewReader("S\n  K = v\n    \n  L = w\n -- DATA -- \n1\n"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, lines)

	v, ok := tree.Get("S")
	require.True(t, ok)
	require.Equal(t, core.SectionMany, v.Kind)
	require.Len(t, v.Many, 2)
	assert.Equal(t, core.AttributeRecord{"K": "v", "L": "w"}, v.Many[0].Record)
	assert.True(t, v.Many[1].IsRaw())
	assert.Equal(t, core.RawLine("    "), v.Many[1].Raw)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/summary-table/pkg/types"
)

// --- test helpers ---

func record(fields ...types.Field) types.Record {
	var r types.Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

func field(name string, v types.Value) types.Field {
	return types.Field{Name: name, Value: v}
}

// twoRuns is the two-segment scenario: the second run carries an N50 value
// that the first run does not.
func twoRuns() types.RecordSet {
	return types.RecordSet{
		record(
			field(types.FieldFlowcellID, types.StringValue("FAK12345")),
			field(types.FieldTotalReads, types.IntValue(500000)),
		),
		record(
			field(types.FieldFlowcellID, types.StringValue("FAK67890")),
			field(types.FieldTotalReads, types.IntValue(300000)),
			field(types.FieldN50Total, types.FloatValue(8.5)),
		),
	}
}

func renderString(t *testing.T, records types.RecordSet, format types.OutputFormat) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, records, format))
	return buf.String()
}

// --- ParseFormat ---

func TestParseFormat(t *testing.T) {
	for _, f := range types.OutputFormats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	for _, bad := range []string{"", "xml", "MD", "markdown"} {
		_, err := ParseFormat(bad)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	}
}

// --- CSV ---

func TestCSVUsesFirstRecordColumns(t *testing.T) {
	got := renderString(t, twoRuns(), types.FormatCSV)
	want := "Flowcell ID,Total reads\n" +
		"FAK12345,500000\n" +
		"FAK67890,300000\n"
	assert.Equal(t, want, got)
}

func TestCSVAbsentFieldIsEmpty(t *testing.T) {
	records := types.RecordSet{
		record(
			field(types.FieldFlowcellID, types.StringValue("A")),
			field(types.FieldN50Total, types.FloatValue(12)),
		),
		record(field(types.FieldN50Total, types.FloatValue(3.25))),
	}
	got := renderString(t, records, types.FormatCSV)
	assert.Equal(t, "Flowcell ID,N50 (total)\nA,12.0\n,3.25\n", got)
}

func TestCSVDoesNotQuote(t *testing.T) {
	records := types.RecordSet{record(field(types.FieldSampleID, types.StringValue(`a,"b"`)))}
	got := renderString(t, records, types.FormatCSV)
	assert.Equal(t, "Sample ID\na,\"b\"\n", got)
}

// --- Markdown ---

func TestMarkdown(t *testing.T) {
	got := renderString(t, twoRuns(), types.FormatMarkdown)
	want := "| Flowcell ID | Total reads |\n" +
		"| --- | --- |\n" +
		"| FAK12345 | 500000 |\n" +
		"| FAK67890 | 300000 |\n"
	assert.Equal(t, want, got)
}

func TestMarkdownAbsentFieldIsEmptyCell(t *testing.T) {
	records := types.RecordSet{
		record(
			field(types.FieldFlowcellID, types.StringValue("A")),
			field(types.FieldSampleID, types.StringValue("s1")),
		),
		record(field(types.FieldFlowcellID, types.StringValue("B"))),
	}
	got := renderString(t, records, types.FormatMarkdown)
	assert.Contains(t, got, "| B |  |\n")
}

func TestMarkdownFieldlessFirstRecord(t *testing.T) {
	records := types.RecordSet{{}, record(field(types.FieldFlowcellID, types.StringValue("B")))}
	got := renderString(t, records, types.FormatMarkdown)
	assert.Equal(t, "|\n|\n|\n|\n", got)
}

// --- empty record set ---

func TestEmptyRecordSet(t *testing.T) {
	for _, f := range []types.OutputFormat{types.FormatMarkdown, types.FormatCSV} {
		var buf bytes.Buffer
		err := Render(&buf, nil, f)
		assert.ErrorIs(t, err, ErrNoRecords, string(f))
		assert.Empty(t, buf.String())
	}

	assert.Equal(t, "[]\n", renderString(t, nil, types.FormatJSON))
	assert.Equal(t, "[]\n", renderString(t, types.RecordSet{}, types.FormatYAML))
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, twoRuns(), types.OutputFormat("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

// --- JSON ---

func TestJSONKeepsPerRecordKeys(t *testing.T) {
	records := twoRuns()
	out := renderString(t, records, types.FormatJSON)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, len(records))

	for i, rec := range records {
		gotKeys := make([]string, 0, len(decoded[i]))
		for k, v := range decoded[i] {
			gotKeys = append(gotKeys, k)
			assert.NotNil(t, v)
		}
		wantKeys := rec.Keys()
		sort.Strings(gotKeys)
		sort.Strings(wantKeys)
		assert.Equal(t, wantKeys, gotKeys, "record %d", i)
	}
}

func TestJSONFormatting(t *testing.T) {
	records := types.RecordSet{
		record(
			field(types.FieldFlowcellID, types.StringValue("FAK12345")),
			field(types.FieldTotalReads, types.IntValue(500000)),
			field(types.FieldTotal15kbPassedBarcode, types.FloatValue(6)),
		),
	}
	got := renderString(t, records, types.FormatJSON)
	want := "[\n" +
		"    {\n" +
		"        \"Flowcell ID\": \"FAK12345\",\n" +
		"        \"Total reads\": 500000,\n" +
		"        \"Total >= 15000 bp passed barcode (Gb)\": 6.0\n" +
		"    }\n" +
		"]\n"
	assert.Equal(t, want, got)
}

func TestJSONNumbersDecodeAsNumbers(t *testing.T) {
	out := renderString(t, twoRuns(), types.FormatJSON)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(500000), decoded[0][types.FieldTotalReads])
	assert.Equal(t, 8.5, decoded[1][types.FieldN50Total])
	assert.Equal(t, "FAK67890", decoded[1][types.FieldFlowcellID])
}

// --- YAML ---

func TestYAML(t *testing.T) {
	out := renderString(t, twoRuns(), types.FormatYAML)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "FAK12345", decoded[0][types.FieldFlowcellID])
	assert.Equal(t, 500000, decoded[0][types.FieldTotalReads])
	assert.Equal(t, 8.5, decoded[1][types.FieldN50Total])
	assert.NotContains(t, decoded[0], types.FieldN50Total)

	// Key order follows each record's insertion order.
	second := out[strings.Index(out, "FAK67890"):]
	assert.Less(t, strings.Index(second, "Total reads"), strings.Index(second, "N50 (total)"))
}

func TestYAMLQuotesNumericLookingStrings(t *testing.T) {
	records := types.RecordSet{record(field(types.FieldSampleID, types.StringValue("0042")))}
	out := renderString(t, records, types.FormatYAML)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "0042", decoded[0][types.FieldSampleID])
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render serializes a RecordSet as a Markdown table, CSV, JSON, or
// YAML.
//
// Markdown and CSV take their columns from the first record's keys, in that
// record's order; later records are rendered against the same columns and
// fields outside them are dropped. JSON and YAML emit every record with
// exactly the fields it holds.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/summary-table/pkg/types"
)

// ErrNoRecords is returned by the tabular formats when there is no first
// record to take columns from.
var ErrNoRecords = errors.New("no run records found in input")

// ErrUnknownFormat is returned for a format outside types.OutputFormats.
var ErrUnknownFormat = errors.New("unsupported format")

// ParseFormat validates s as an output format.
func ParseFormat(s string) (types.OutputFormat, error) {
	for _, f := range types.OutputFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q: use %s", ErrUnknownFormat, s, FormatList())
}

// FormatList returns the accepted formats joined for help and error text.
func FormatList() string {
	names := make([]string, len(types.OutputFormats))
	for i, f := range types.OutputFormats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Render writes records to w in the given format.
func Render(w io.Writer, records types.RecordSet, format types.OutputFormat) error {
	switch format {
	case types.FormatMarkdown:
		return Markdown(w, records)
	case types.FormatCSV:
		return CSV(w, records)
	case types.FormatJSON:
		return JSON(w, records)
	case types.FormatYAML:
		return YAML(w, records)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// columns returns the first record's keys.
func columns(records types.RecordSet) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records[0].Keys(), nil
}

// cell returns the textual value of name in rec, or "" when absent.
func cell(rec types.Record, name string) string {
	v, ok := rec.Get(name)
	if !ok {
		return ""
	}
	return v.String()
}

// Markdown writes a pipe table: a header row, a "---" separator row, and one
// row per record.
func Markdown(w io.Writer, records types.RecordSet) error {
	cols, err := columns(records)
	if err != nil {
		return err
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(c)
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(cols)
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)

	row := make([]string, len(cols))
	for _, rec := range records {
		for i, c := range cols {
			row[i] = cell(rec, c)
		}
		writeRow(row)
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// CSV writes comma-joined lines. Values are not quoted or escaped.
func CSV(w io.Writer, records types.RecordSet) error {
	cols, err := columns(records)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, ","))
	b.WriteString("\n")

	row := make([]string, len(cols))
	for _, rec := range records {
		for i, c := range cols {
			row[i] = cell(rec, c)
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// JSON writes the records as an array of objects indented by four spaces.
// An empty RecordSet renders as [].
func JSON(w io.Writer, records types.RecordSet) error {
	if records == nil {
		records = types.RecordSet{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// YAML writes the records as a sequence of mappings, keeping each record's
// key order and value types. An empty RecordSet renders as [].
func YAML(w io.Writer, records types.RecordSet) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, rec := range records {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range rec.Fields() {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
				yamlScalar(f.Value),
			)
		}
		doc.Content = append(doc.Content, m)
	}
	if len(doc.Content) == 0 {
		doc.Style = yaml.FlowStyle
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func yamlScalar(v types.Value) *yaml.Node {
	tag := "!!str"
	switch v.Kind {
	case types.KindInt:
		tag = "!!int"
	case types.KindFloat:
		tag = "!!float"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}
}

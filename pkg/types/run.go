// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for summary-table:
// typed field values, ordered run records, and configuration.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canonical field names recognized in a summary_metrics run report.
// A Record's keys are always drawn from this set.
const (
	FieldFlowcellID               = "Flowcell ID"
	FieldRunID                    = "Run ID"
	FieldExperimentID             = "Experiment ID"
	FieldSampleID                 = "Sample ID"
	FieldTotalReads               = "Total reads"
	FieldTotalPassedReads         = "Total passed reads"
	FieldDetectedBarcode          = "Detected barcode"
	FieldTotalOutput              = "Total output (Gb)"
	FieldTotalOutputPassed        = "Total output passed (Gb)"
	FieldTotalOutputPassedBarcode = "Total output passed barcode (Gb)"
	FieldTotal15kbPassedBarcode   = "Total >= 15000 bp passed barcode (Gb)"
	FieldN50Total                 = "N50 (total)"
	FieldMeanReadLengthBefore     = "Mean read length before filtering (bp)"
	FieldMedianReadLengthBefore   = "Median read length before filtering (bp)"
	FieldMeanReadLengthAfter      = "Mean read length after filtering (bp)"
	FieldMedianReadLengthAfter    = "Median read length after filtering (bp)"
)

// ValueKind is the type a field value was converted to.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindFloat  ValueKind = "float"
)

// Value is a typed field value: a string, a base-10 integer, or a float.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
}

// StringValue wraps s as a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue wraps n as an integer Value.
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n} }

// FloatValue wraps f as a floating point Value.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// ParseValue converts raw text to a Value of the given kind. Strings are
// kept verbatim, integers are parsed base 10, floats as decimals.
func ParseValue(kind ValueKind, raw string) (Value, error) {
	switch kind {
	case KindString:
		return StringValue(raw), nil
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parsing integer %q: %w", raw, err)
		}
		return IntValue(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parsing float %q: %w", raw, err)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("unknown value kind %q", kind)
	}
}

// String returns the natural textual form of the value: strings verbatim,
// integers without a decimal point, floats always with one ("12.0", "8.5").
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	default:
		return v.Str
	}
}

// formatFloat renders f as the shortest decimal that round-trips, switching
// to exponent notation outside [1e-4, 1e16).
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// MarshalJSON encodes numbers with the same text String produces, so a
// float keeps its decimal point in JSON output.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt, KindFloat:
		return []byte(v.String()), nil
	default:
		return encodeJSONString(v.Str)
	}
}

// Field is one named value within a Record.
type Field struct {
	Name  string
	Value Value
}

// Record holds the fields extracted from one run segment in the order they
// were first encountered. Absent fields are not represented.
type Record struct {
	fields []Field
}

// Set stores v under name. A repeated name overwrites the earlier value but
// keeps its original position.
func (r *Record) Set(name string, v Value) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

// Get returns the value stored under name and whether it is present.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the field names in insertion order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

// Fields returns a copy of the record's fields in insertion order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields present.
func (r Record) Len() int { return len(r.fields) }

// MarshalJSON encodes the record as an object holding exactly the fields
// present, in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSONString(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RecordSet is the ordered list of Records, one per run segment.
type RecordSet []Record

// encodeJSONString quotes s as a JSON string without HTML escaping, so keys
// such as "Total >= 15000 bp" stay readable.
func encodeJSONString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns free-text summary_metrics output into typed run
// records. The report is split into segments on a delimiter keyword and every
// line of a segment is matched against a fixed set of labelled patterns.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/summary-table/pkg/types"
)

// fieldPattern binds a canonical field name to the line shape it is read from
// and the kind its capture is converted to.
type fieldPattern struct {
	name string
	re   *regexp.Regexp
	kind types.ValueKind
}

// fieldPatterns is applied to every line, in this order.
var fieldPatterns = []fieldPattern{
	{types.FieldFlowcellID, regexp.MustCompile(`Flowcell ID: (.+)`), types.KindString},
	{types.FieldRunID, regexp.MustCompile(`Run ID: (.+)`), types.KindString},
	{types.FieldExperimentID, regexp.MustCompile(`Experiment ID: (.+)`), types.KindString},
	{types.FieldSampleID, regexp.MustCompile(`Sample ID: (.+)`), types.KindString},
	{types.FieldTotalReads, regexp.MustCompile(`Total reads: (\d+)`), types.KindInt},
	{types.FieldTotalPassedReads, regexp.MustCompile(`Total passed reads: (\d+)`), types.KindInt},
	// Only the barcode name is kept; the count is discarded.
	{types.FieldDetectedBarcode, regexp.MustCompile(`Detected barcode \(total\): (\w+) \(count: \d+\)`), types.KindString},
	{types.FieldTotalOutput, regexp.MustCompile(`Total output: (\d+\.\d+) Gb`), types.KindFloat},
	{types.FieldTotalOutputPassed, regexp.MustCompile(`Total output \(passed\): (\d+\.\d+) Gb`), types.KindFloat},
	{types.FieldTotalOutputPassedBarcode, regexp.MustCompile(`Total output \(passed, barcode\): (\d+\.\d+) Gb`), types.KindFloat},
	{types.FieldTotal15kbPassedBarcode, regexp.MustCompile(`Total >= 15000 bp \(passed, barcode\): (\d+\.\d+) Gb`), types.KindFloat},
	{types.FieldN50Total, regexp.MustCompile(`N50 \(total\): (\d+\.\d+) Kb`), types.KindFloat},
	{types.FieldMeanReadLengthBefore, regexp.MustCompile(`Mean read length \(before filtering\): (\d+\.\d+) bp`), types.KindFloat},
	{types.FieldMedianReadLengthBefore, regexp.MustCompile(`Median read length \(before filtering\): (\d+\.\d+) bp`), types.KindFloat},
	{types.FieldMeanReadLengthAfter, regexp.MustCompile(`Mean read length \(after filtering\): (\d+\.\d+) bp`), types.KindFloat},
	{types.FieldMedianReadLengthAfter, regexp.MustCompile(`Median read length \(after filtering\): (\d+\.\d+) bp`), types.KindFloat},
}

// FieldNames returns the recognized field vocabulary in pattern order.
func FieldNames() []string {
	names := make([]string, len(fieldPatterns))
	for i, p := range fieldPatterns {
		names[i] = p.name
	}
	return names
}

// Extractor splits a report into run segments and extracts one Record per
// segment.
type Extractor struct {
	delimiter string
	logger    *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDelimiter sets the keyword that starts each run segment. An empty
// delimiter keeps the default.
func WithDelimiter(delimiter string) Option {
	return func(e *Extractor) {
		if delimiter != "" {
			e.delimiter = delimiter
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New returns an Extractor using types.DefaultDelimiter unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		delimiter: types.DefaultDelimiter,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns one Record per delimiter occurrence in text, in input
// order. Text before the first delimiter is discarded. A field whose pattern
// never matches is simply absent from its Record.
func (e *Extractor) Extract(text string) (types.RecordSet, error) {
	segments := splitSegments(text, e.delimiter)
	e.logger.Debug("split report", zap.String("delimiter", e.delimiter), zap.Int("segments", len(segments)))

	records := make(types.RecordSet, 0, len(segments))
	for i, seg := range segments {
		rec, err := extractSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		e.logger.Debug("extracted record", zap.Int("segment", i+1), zap.Int("fields", rec.Len()))
		records = append(records, rec)
	}
	return records, nil
}

// splitSegments partitions text on every occurrence of delimiter and drops
// the preamble before the first one.
func splitSegments(text, delimiter string) []string {
	parts := strings.Split(text, delimiter)
	return parts[1:]
}

// extractSegment applies every field pattern to every line of seg. A later
// match for the same field overwrites the earlier value.
func extractSegment(seg string) (types.Record, error) {
	var rec types.Record
	for _, line := range strings.Split(strings.TrimSpace(seg), "\n") {
		line = strings.TrimRight(line, "\r")
		for _, p := range fieldPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			v, err := types.ParseValue(p.kind, m[1])
			if err != nil {
				return types.Record{}, fmt.Errorf("field %q: %w", p.name, err)
			}
			rec.Set(p.name, v)
		}
	}
	return rec, nil
}

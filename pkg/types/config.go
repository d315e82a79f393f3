// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OutputFormat selects how a RecordSet is rendered.
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "md"
	FormatCSV      OutputFormat = "csv"
	FormatJSON     OutputFormat = "json"
	FormatYAML     OutputFormat = "yaml"
)

// OutputFormats lists the accepted formats in help-text order.
var OutputFormats = []OutputFormat{FormatMarkdown, FormatCSV, FormatJSON, FormatYAML}

// DefaultDelimiter is the keyword that opens each run's report.
const DefaultDelimiter = "Processing"

// ExtractConfig holds settings for the record extractor.
type ExtractConfig struct {
	// Delimiter is the literal keyword that starts each run segment
	// (default "Processing").
	Delimiter string `json:"delimiter" yaml:"delimiter"`
}

// StoreConfig holds settings for the run history database.
type StoreConfig struct {
	// Path is the SQLite database file. Empty disables persistence.
	Path string `json:"path" yaml:"path"`
}

// HistoryConfig holds defaults for querying stored runs.
type HistoryConfig struct {
	// Limit caps the number of runs returned (0 = all).
	Limit int `json:"limit" yaml:"limit"`
}

// Config groups all settings read from flags, environment, and config file.
type Config struct {
	Format  OutputFormat  `json:"format" yaml:"format"`
	Verbose bool          `json:"verbose" yaml:"verbose"`
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	History HistoryConfig `json:"history" yaml:"history"`
}

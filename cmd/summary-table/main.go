// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the summary-table CLI, which turns
// summary_metrics run reports into Markdown, CSV, JSON, or YAML tables.
package main

import (
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

//go:build mage

// Package main contains Mage build targets for summary-table developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "summary-table"
	cmdPkg  = "./cmd/summary-table"
	sample  = "internal/extract/testdata/two_runs.txt"
)

// Default target when mage is run without arguments.
var Default = Build

// Build compiles the CLI binary into bin/, stamping the version from
// SUMMARY_TABLE_VERSION (default "dev").
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("SUMMARY_TABLE_VERSION")
	if version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs Vet then Test.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Sample renders the bundled two-run report in every output format.
func Sample() error {
	mg.Deps(Build)
	bin := filepath.Join(binDir, binName)
	for _, format := range []string{"md", "csv", "json", "yaml"} {
		fmt.Printf("--- %s\n", format)
		if err := sh.RunV(bin, "--format", format, sample); err != nil {
			return fmt.Errorf("rendering %s: %w", format, err)
		}
	}
	return nil
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/summary-table/internal/extract"
	"github.com/pdiddy/summary-table/internal/logging"
	"github.com/pdiddy/summary-table/internal/render"
	"github.com/pdiddy/summary-table/internal/store"
	"github.com/pdiddy/summary-table/pkg/types"
)

// app carries per-invocation state shared by the root command and its
// subcommands.
type app struct {
	v      *viper.Viper
	format formatValue
	logger *zap.Logger
}

// formatValue is the --format flag. Set rejects anything outside
// types.OutputFormats, so a bad value fails during argument parsing.
type formatValue struct {
	value types.OutputFormat
}

func (f *formatValue) String() string { return string(f.value) }

func (f *formatValue) Set(s string) error {
	format, err := render.ParseFormat(s)
	if err != nil {
		return err
	}
	f.value = format
	return nil
}

func (f *formatValue) Type() string { return "format" }

func newRootCmd() *cobra.Command {
	a := &app{
		v:      viper.New(),
		format: formatValue{value: types.FormatMarkdown},
		logger: zap.NewNop(),
	}

	cmd := &cobra.Command{
		Use:   "summary-table [file...]",
		Short: "Tabulate summary_metrics run reports",
		Long: `summary-table reads summary_metrics output from stdin (or from the files
given as arguments), extracts one record per "Processing" section, and writes
the runs as a Markdown table, CSV, JSON, or YAML.

Table columns come from the first run's fields. Use --store to keep the parsed
runs in a SQLite database and the history subcommand to render them again.`,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: a.initConfig,
		RunE:              a.runTable,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./summary-table.yaml or ~/.config/summary-table/summary-table.yaml)")
	flags.VarP(&a.format, "format", "f", "output format: "+render.FormatList())
	flags.BoolP("verbose", "v", false, "log diagnostics to stderr")
	flags.String("store", "", "SQLite database for run history")
	cmd.Flags().String("delimiter", types.DefaultDelimiter, "keyword that starts each run's report")

	_ = a.v.BindPFlag("format", flags.Lookup("format"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("store.path", flags.Lookup("store"))
	_ = a.v.BindPFlag("extract.delimiter", cmd.Flags().Lookup("delimiter"))

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// initConfig reads the config file and SUMMARY_TABLE_* environment variables,
// then builds the logger.
func (a *app) initConfig(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("summary-table")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "summary-table"))
		}
	}

	a.v.SetDefault("format", string(types.FormatMarkdown))
	a.v.SetDefault("extract.delimiter", types.DefaultDelimiter)
	a.v.SetDefault("store.path", "")
	a.v.SetDefault("history.limit", 0)

	a.v.SetEnvPrefix("SUMMARY_TABLE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	readErr := a.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if readErr != nil && (cfgFile != "" || !errors.As(readErr, &notFound)) {
		return fmt.Errorf("reading config: %w", readErr)
	}

	a.logger = logging.New(a.v.GetBool("verbose"), cmd.ErrOrStderr())
	if readErr == nil {
		a.logger.Debug("using config file", zap.String("path", a.v.ConfigFileUsed()))
	}
	return nil
}

// config resolves the effective settings. A format coming from the
// environment or a config file is validated the same way as the flag.
func (a *app) config() (types.Config, error) {
	format, err := render.ParseFormat(a.v.GetString("format"))
	if err != nil {
		return types.Config{}, err
	}
	return types.Config{
		Format:  format,
		Verbose: a.v.GetBool("verbose"),
		Extract: types.ExtractConfig{Delimiter: a.v.GetString("extract.delimiter")},
		Store:   types.StoreConfig{Path: a.v.GetString("store.path")},
		History: types.HistoryConfig{Limit: a.v.GetInt("history.limit")},
	}, nil
}

func (a *app) runTable(cmd *cobra.Command, args []string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ex := extract.New(
		extract.WithDelimiter(cfg.Extract.Delimiter),
		extract.WithLogger(a.logger),
	)
	records, err := ex.Extract(text)
	if err != nil {
		return fmt.Errorf("extracting runs: %w", err)
	}

	if err := render.Render(cmd.OutOrStdout(), records, cfg.Format); err != nil {
		return err
	}

	if cfg.Store.Path == "" {
		return nil
	}

	s, err := store.Open(cfg.Store, store.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.Ingest(cmd.Context(), records); err != nil {
		return fmt.Errorf("storing runs: %w", err)
	}
	return nil
}

// readInput returns stdin, or the named files concatenated in order. The
// name "-" stands for stdin.
func readInput(stdin io.Reader, paths []string) (string, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	var b strings.Builder
	for _, p := range paths {
		var (
			data []byte
			err  error
		)
		if p == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", p, err)
		}
		b.Write(data)
	}
	return b.String(), nil
}

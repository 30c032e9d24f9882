package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vizforge-org/vizforge/helpers"
	"github.com/vizforge-org/vizforge/planner"
	"github.com/vizforge-org/vizforge/store"
)

// ============================================================================
// ROOT COMMAND — Shared flags and session wiring
// ============================================================================

type rootFlags struct {
	file    string
	model   string
	remote  bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "vizforge",
		Short:   "Build and edit charts from plain-language commands",
		Version: version,
		Long: `Vizforge turns tabular data and plain-language commands into
Vega-Lite specs. Point it at a CSV, describe the chart you want, and it
compiles a deterministic spec you can paste into any Vega-Lite renderer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.file, "file", "f", "", "Path to CSV data file")
	cmd.PersistentFlags().StringVar(&flags.model, "model", "", "Gemini model name (remote planning)")
	cmd.PersistentFlags().BoolVar(&flags.remote, "remote", false, "Plan with the Gemini API instead of local patterns")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newInferCmd(flags),
		newCompileCmd(flags),
		newAskCmd(flags),
		newReplCmd(flags),
	)
	return cmd
}

// newLogger builds the CLI logger. Quiet by default; the library itself
// never logs unless handed one of these.
func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// newSession loads the CSV and builds a session with the selected planner.
func newSession(flags *rootFlags) (*store.Session, error) {
	if flags.file == "" {
		return nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(flags.file)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	rows, columns, err := helpers.ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	log, err := newLogger(flags.verbose)
	if err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithLogger(log)}
	if flags.remote {
		gem, err := newGemini(flags)
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithPlanner(gem), store.WithSpecEditor(gem))
	}

	return store.NewSession(rows, columns, opts...)
}

func newGemini(flags *rootFlags) (*planner.Gemini, error) {
	return planner.NewGemini(context.Background(), planner.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  flags.model,
	})
}

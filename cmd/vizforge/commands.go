package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vizforge-org/vizforge/builder"
	"github.com/vizforge-org/vizforge/vega"
)

// ============================================================================
// SUBCOMMANDS — infer, compile, ask
// ============================================================================

func newInferCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "infer",
		Short: "Print the inferred field types for a dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(flags)
			if err != nil {
				return err
			}
			return writePretty(cmd, sess.Fields())
		},
	}
}

func newCompileCmd(flags *rootFlags) *cobra.Command {
	var statePath string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a chart state (or the default chart) to a spec",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(flags)
			if err != nil {
				return err
			}

			if statePath != "" {
				raw, err := os.ReadFile(statePath)
				if err != nil {
					return fmt.Errorf("read state file: %w", err)
				}
				var state builder.State
				if err := json.Unmarshal(raw, &state); err != nil {
					return fmt.Errorf("parse state file: %w", err)
				}
				out, err := vega.Compile(state, sess.Fields()).MarshalIndent()
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				return nil
			}

			return writeSpec(cmd, sess.Spec())
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "Path to a chart state JSON file")
	return cmd
}

func newAskCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <command...>",
		Short: "Apply a plain-language edit and print the resulting spec",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(flags)
			if err != nil {
				return err
			}

			warnings, err := sess.ApplyCommand(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return writeSpec(cmd, sess.Spec())
		},
	}
}

func writeSpec(cmd *cobra.Command, spec json.RawMessage) error {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(json.RawMessage(spec)); err != nil {
		return err
	}
	cmd.Print(buf.String())
	return nil
}

func writePretty(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

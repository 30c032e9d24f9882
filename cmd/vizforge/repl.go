package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vizforge-org/vizforge/store"
)

// ============================================================================
// REPL — Interactive editing session
// ============================================================================
// Plain lines are chart-edit commands. Colon-prefixed lines are REPL
// controls:
//   :spec      print the current spec
//   :state     print the current builder state
//   :fields    print the inferred fields
//   :history   list snapshots
//   :undo      step back
//   :redo      step forward
//   :set p v   set one spec path (sjson syntax), e.g. :set title "Q3 Sales"
//   :quit      exit
// ============================================================================

func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Edit a chart interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(flags)
			if err != nil {
				return err
			}

			cmd.Printf("vizforge %s — %d fields loaded. Type a command, or :help.\n",
				version, len(sess.Fields()))

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				cmd.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if strings.HasPrefix(line, ":") {
					if quit := runControl(cmd, sess, line); quit {
						return nil
					}
					continue
				}

				warnings, err := sess.ApplyCommand(cmd.Context(), line)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					continue
				}
				for _, w := range warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
				}
				if err := writeSpec(cmd, sess.Spec()); err != nil {
					return err
				}
			}
		},
	}
}

// runControl handles one colon command. Returns true to exit the loop.
func runControl(cmd *cobra.Command, sess *store.Session, line string) bool {
	parts := strings.Fields(line)
	switch parts[0] {
	case ":quit", ":q", ":exit":
		return true

	case ":spec":
		_ = writeSpec(cmd, sess.Spec())

	case ":state":
		_ = writePretty(cmd, sess.State())

	case ":fields":
		for _, f := range sess.Fields() {
			cmd.Printf("  %-20s %s\n", f.Name, f.Type)
		}

	case ":history":
		for i, snap := range sess.History() {
			cmd.Printf("  %2d  %s  %s\n", i, snap.Timestamp.Format("15:04:05"), snap.Description)
		}

	case ":undo":
		if !sess.Undo() {
			cmd.Println("nothing to undo")
		}

	case ":redo":
		if !sess.Redo() {
			cmd.Println("nothing to redo")
		}

	case ":set":
		if len(parts) < 3 {
			cmd.Println("usage: :set <path> <value>")
			break
		}
		value := strings.Join(parts[2:], " ")
		if err := sess.EditSpecPath(parts[1], parseValue(value)); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}

	case ":help":
		cmd.Println(":spec :state :fields :history :undo :redo :set <path> <value> :quit")

	default:
		cmd.Printf("unknown control %q (try :help)\n", parts[0])
	}
	return false
}

// parseValue keeps :set ergonomic: quoted strings lose their quotes,
// numbers and booleans become typed values, everything else is a string.
func parseValue(s string) any {
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

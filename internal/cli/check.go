package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/analysis"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		jsonOut     bool
		fix         string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check a requirements file for dependency conflicts",
		Long: `Check analyzes a requirements.txt file against the package index and
reports missing packages, unknown pinned versions, duplicate pins and
violated dependency bounds. Reads stdin when the file is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, source, err := readInput(args)
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			engine, err := c.newEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			spin := newSpinner(cmd.Context(), "Checking "+source)
			if !jsonOut {
				spin.Start()
			}
			report, err := engine.Run(cmd.Context(), text)
			if !jsonOut {
				spin.Stop()
			}
			if err != nil {
				if errors.Is(err, analysis.ErrNoPackages) {
					return fmt.Errorf("%s: %w", source, err)
				}
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(report)
			}

			if interactive && report.HasConflicts() {
				model := newConflictModel(report)
				if _, err := tea.NewProgram(model).Run(); err != nil {
					return fmt.Errorf("interactive mode: %w", err)
				}
			} else {
				printReport(report, source)
			}

			if fix != "" && report.HasConflicts() {
				if err := writeFixed(fix, report.Fixed); err != nil {
					return err
				}
				printSuccess("Wrote corrected requirements")
				printFile(fix)
			}

			if report.HasConflicts() {
				return errConflictsFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full report as JSON")
	cmd.Flags().StringVar(&fix, "fix", "", "write the corrected requirements to this file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse conflicts interactively")

	return cmd
}

// errConflictsFound makes "depscout check" exit nonzero when conflicts
// exist, without printing a redundant error line.
var errConflictsFound = errors.New("conflicts found")

// IsConflictExit reports whether err is the sentinel used for the
// conflicts-found exit status.
func IsConflictExit(err error) bool {
	return errors.Is(err, errConflictsFound)
}

func readInput(args []string) (text, source string, err error) {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read requirements: %w", err)
	}
	return string(data), path, nil
}

func printReport(report *analysis.Report, source string) {
	if !report.HasConflicts() {
		printSuccess("No conflicts in %s (%d packages, %s)",
			source, len(report.Requirements), report.Elapsed.Round(time.Millisecond))
		return
	}

	printError("%d conflicts in %s", len(report.Conflicts), source)
	printNewline()

	for _, conflict := range report.Conflicts {
		fmt.Println("  " + styleKind.Render(string(conflict.Kind)) + " " + StyleHighlight.Render(conflict.Package))
		printDetail("%s", conflict.Message)
		if conflict.Hint != "" {
			printDetail("%s", conflict.Hint)
		}
	}

	if len(report.Fixed) > 0 {
		printNewline()
		printInfo("Corrected requirements:")
		for _, line := range report.Fixed {
			printDetail("%s", line)
		}
		printNewline()
		printNextStep("Apply them", "depscout check --fix requirements.txt")
	}
}

func writeFixed(path string, fixed []string) error {
	content := strings.Join(fixed, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write fixed requirements: %w", err)
	}
	return nil
}

// Package output provides functions to print messages with optional color formatting
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/siteforge-io/siteforge/db"
	"github.com/siteforge-io/siteforge/provision"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
)

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// InitColors sets up color functions based on environment
func InitColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		// Fallback to plain formatting if colors are not supported
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// PrintMessage formats a message with color (if enabled) and returns it
func PrintMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

// Fprint helpers write a colored message to the command's output stream.

func FprintPlain(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(Plain, tmpl, a...))
	return err
}

func FprintSuccess(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(Success, tmpl, a...))
	return err
}

func FprintWarning(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(Warning, tmpl, a...))
	return err
}

func FprintError(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.ErrOrStderr(), PrintMessage(Error, tmpl, a...))
	return err
}

// PrintToStderr formats a message with color (if enabled) and prints it to
// stderr. Used by error handling paths that have no command handy.
func PrintToStderr(kind color.Attribute, tmpl string, a ...any) {
	fmt.Fprint(os.Stderr, PrintMessage(kind, tmpl, a...))
}

func PrintTable(header []string, data [][]string) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignLeft, tw.AlignLeft}},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

// PrintProbeTable renders the probe snapshot as a resource/state/identifier table.
func PrintProbeTable(snap *provision.Snapshot) (string, error) {
	rows := [][]string{
		probeRow("Working tree", snap.WorkingTree.Exists, snap.WorkingTree.ID),
		probeRow("Repository", snap.Repository.Exists, snap.Repository.ID),
		probeRow("Site", snap.Site.Exists, snap.Site.ID),
		probeRow("Database link", snap.Database.Exists, snap.Database.ID),
	}

	table, err := PrintTable([]string{"Resource", "State", "Identifier"}, rows)
	if err != nil {
		return "", fmt.Errorf("printing probe table: %w", err)
	}
	return table, nil
}

func probeRow(label string, exists bool, id string) []string {
	state := "absent"
	if exists {
		state = "present"
	} else {
		id = "-"
	}
	return []string{label, state, id}
}

// PrintRunList renders journal runs, most recent first.
func PrintRunList(runs []*db.RunModel) (string, error) {
	if len(runs) == 0 {
		return PrintMessage(Plain, "No runs recorded."), nil
	}

	header := []string{"Started At", "Operation", "Project", "Status", "Steps"}
	var data [][]string
	for _, run := range runs {
		data = append(data, []string{
			run.CreatedAt.Format(time.DateTime),
			run.Operation,
			run.ProjectName,
			run.Status,
			fmt.Sprintf("%d", len(run.Steps)),
		})
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing run list table: %w", err)
	}
	return table, nil
}

// CLI flag for disabling color output

// NoColor is a flag that can be used to disable colored output in the CLI.
var NoColor = &noColorFlag{set: false}

type noColorFlag struct {
	set bool
}

func (f *noColorFlag) Set(value string) error {
	// Boolean flag, the value is ignored
	f.set = true
	return nil
}

func (f *noColorFlag) String() string {
	if f.set {
		return "true"
	}
	return "false"
}

func (f *noColorFlag) Type() string {
	return "bool"
}

// IsSet returns true if the --no-color flag was explicitly set
func (f *noColorFlag) IsSet() bool {
	return f.set
}

// IsBoolFlag tells pflag this is a boolean flag (no argument required)
func (f *noColorFlag) IsBoolFlag() bool {
	return true
}

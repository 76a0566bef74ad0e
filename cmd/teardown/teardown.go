// Package teardown implements the deletion-path CLI command.
package teardown

import (
	"github.com/spf13/cobra"

	"github.com/siteforge-io/siteforge/cmd/output"
	"github.com/siteforge-io/siteforge/cmd/utils"
	"github.com/siteforge-io/siteforge/config"
	"github.com/siteforge-io/siteforge/db"
	"github.com/siteforge-io/siteforge/domain"
	"github.com/siteforge-io/siteforge/internal/app"
	"github.com/siteforge-io/siteforge/provision"
)

func NewCmdTeardown() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete the project's resources",
		Long: `Delete the hosting site, the hosted repository and the local working
tree of a project, in that order. Each deletion is best-effort: a failure
is reported as a warning and the remaining deletions still run.

This operation cannot be undone and requires double confirmation.`,
		Run: func(cmd *cobra.Command, args []string) {
			runTeardown(cmd)
		},
	}

	cmd.Flags().StringP("name", "n", "", "Project name (prompted for when omitted)")
	return cmd
}

// lineConfirmer adapts the shared line reader to the confirmation prompts.
type lineConfirmer struct {
	cmd    *cobra.Command
	reader *utils.LineReader
}

func (c lineConfirmer) Confirm(prompt string) (string, error) {
	return c.reader.Prompt(c.cmd, prompt)
}

func runTeardown(cmd *cobra.Command) {
	cfg := app.GetConfig()
	if err := cfg.RequireFor(config.OperationTeardown); err != nil {
		utils.HandleCommandError("loading settings", err)
		return
	}

	reader := utils.NewLineReader(cmd.InOrStdin())

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		var err error
		name, err = reader.Prompt(cmd, "Project name: ")
		if err != nil {
			utils.HandleCommandError("reading project name", err)
			return
		}
	}

	identity, err := domain.NewProjectIdentity(name)
	if err != nil {
		utils.HandleCommandError("validating project name", err)
		return
	}

	ctx := cmd.Context()
	run := app.GetJournal().Begin("teardown", identity.Name)
	teardown := app.NewTeardown(output.CommandReporter{Cmd: cmd}, run)

	snap, err := teardown.Probe(ctx, identity)
	if err != nil {
		run.Finish(db.RunStatusFailed)
		utils.HandleCommandError("probing resource state", err)
		return
	}

	_ = output.FprintWarning(cmd, "\nWARNING: You are about to DELETE the following resources:\n")
	table, err := output.PrintProbeTable(snap)
	if err != nil {
		utils.HandleCommandError("printing probe table", err)
		return
	}
	_ = output.FprintPlain(cmd, "%s", table)

	result, err := teardown.Run(ctx, identity, snap, lineConfirmer{cmd: cmd, reader: reader})
	if err != nil {
		run.Finish(db.RunStatusFailed)
		utils.HandleCommandError("tearing down", err, "project", identity.Name)
		return
	}

	switch {
	case result.Cancelled:
		run.Finish(db.RunStatusCancelled)
	case result.PartialFailure():
		run.Finish(db.RunStatusPartial)
		_ = output.FprintWarning(cmd, "Teardown finished with %d warning(s); some resources may remain", len(result.Warnings))
	default:
		run.Finish(db.RunStatusSucceeded)
		_ = output.FprintSuccess(cmd, "Project '%s' torn down successfully", identity.Name)
	}
}

var _ provision.Confirmer = lineConfirmer{}

// Package provision implements the creation-path CLI command.
package provision

import (
	"github.com/spf13/cobra"

	"github.com/siteforge-io/siteforge/cmd/output"
	"github.com/siteforge-io/siteforge/cmd/utils"
	"github.com/siteforge-io/siteforge/config"
	"github.com/siteforge-io/siteforge/db"
	"github.com/siteforge-io/siteforge/domain"
	"github.com/siteforge-io/siteforge/internal/app"
)

func NewCmdProvision() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision the web project skeleton",
		Long: `Create every missing resource for a web project: local working tree,
private hosted repository, hosting site with per-context environment
variables, linked database with one applied migration, and an initial
push of all managed branches. Existing resources are skipped.`,
		Run: func(cmd *cobra.Command, args []string) {
			runProvision(cmd)
		},
	}

	cmd.Flags().StringP("name", "n", "", "Project name (prompted for when omitted)")
	return cmd
}

func runProvision(cmd *cobra.Command) {
	cfg := app.GetConfig()
	if err := cfg.RequireFor(config.OperationProvision); err != nil {
		utils.HandleCommandError("loading settings", err)
		return
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		var err error
		name, err = utils.NewLineReader(cmd.InOrStdin()).Prompt(cmd, "Project name: ")
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
	run := app.GetJournal().Begin("provision", identity.Name)
	orchestrator := app.NewOrchestrator(output.CommandReporter{Cmd: cmd}, run)

	snap, err := orchestrator.Probe(ctx, identity)
	if err != nil {
		run.Finish(db.RunStatusFailed)
		utils.HandleCommandError("probing resource state", err)
		return
	}

	table, err := output.PrintProbeTable(snap)
	if err != nil {
		utils.HandleCommandError("printing probe table", err)
		return
	}
	_ = output.FprintPlain(cmd, "%s", table)

	result, err := orchestrator.Provision(ctx, identity, snap)
	if err != nil {
		run.Finish(db.RunStatusFailed)
		utils.HandleCommandError("provisioning", err, "project", identity.Name)
		return
	}
	run.Finish(db.RunStatusSucceeded)

	summary, err := output.PrintTable(nil, [][]string{
		{"Repository", result.RepoFullName},
		{"Site", result.SiteName + " (" + result.SiteID + ")"},
		{"Working directory", result.WorkingDir},
		{"Migration", result.Migration},
	})
	if err != nil {
		utils.HandleCommandError("printing summary", err)
		return
	}
	_ = output.FprintPlain(cmd, "%s", summary)
	_ = output.FprintSuccess(cmd, "Project '%s' provisioned successfully", identity.Name)
}

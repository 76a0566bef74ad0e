// Package history implements the journal listing CLI command.
package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siteforge-io/siteforge/cmd/output"
	"github.com/siteforge-io/siteforge/cmd/utils"
	"github.com/siteforge-io/siteforge/internal/app"
)

func NewCmdHistory() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past provisioning and teardown runs",
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")

			runs, err := app.GetJournal().ListRuns(limit)
			if err != nil {
				utils.HandleCommandError("listing runs", err)
				return
			}

			out, err := output.PrintRunList(runs)
			if err != nil {
				utils.HandleCommandError("printing run list", err)
				return
			}

			if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
				utils.HandleCommandError("printing run list", err)
			}
		},
	}

	cmd.Flags().IntP("limit", "m", 20, "Maximum number of runs to show")
	return cmd
}

// Package root implements the command line interface for siteforge.
package root

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/siteforge-io/siteforge/cmd/history"
	"github.com/siteforge-io/siteforge/cmd/output"
	provisioncmd "github.com/siteforge-io/siteforge/cmd/provision"
	teardowncmd "github.com/siteforge-io/siteforge/cmd/teardown"
	"github.com/siteforge-io/siteforge/config"
	"github.com/siteforge-io/siteforge/internal/app"
	"github.com/siteforge-io/siteforge/logging"
)

func Execute() {
	if err := NewCmdRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCmdRoot() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "siteforge",
		Short: "Provision and tear down multi-provider web project skeletons",
		Long: `Siteforge provisions a web project skeleton across providers: a local
git working tree, a private hosted repository, a static hosting site with
branch-based deploy contexts, and a linked database with one migration.
Re-running is safe: existing resources are detected and skipped.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(envFile)
			if err != nil {
				log.Fatalf("Failed to load settings: %s", err)
			}

			// Initialize colors (CLI flag overrides config)
			colorDisabled := !cfg.ColorEnabled
			if output.NoColor.IsSet() {
				colorDisabled = true
			}
			output.InitColors(colorDisabled)

			// Initialize logging (CLI flag overrides config)
			logLevel := cfg.LogLevel
			if logging.LogLevel.IsSet() {
				logLevel = logging.LogLevel.String()
			}
			logging.InitLogging(logLevel)

			if err := app.InitializeWithConfig(cfg); err != nil {
				log.Fatalf("Failed to initialize application: %s", err)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Settings file with provider credentials")
	cmd.PersistentFlags().VarP(logging.LogLevel, "log-level", "l", "Set log verbosity level")
	cmd.PersistentFlags().VarP(output.NoColor, "no-color", "c", "Disable colored terminal output")

	cmd.AddCommand(provisioncmd.NewCmdProvision())
	cmd.AddCommand(teardowncmd.NewCmdTeardown())
	cmd.AddCommand(history.NewCmdHistory())
	return cmd
}

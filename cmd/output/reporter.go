package output

import "github.com/spf13/cobra"

// CommandReporter renders orchestrator progress on a command's output
// streams with the configured colors.
type CommandReporter struct {
	Cmd *cobra.Command
}

func (r CommandReporter) Infof(format string, a ...any) {
	_ = FprintPlain(r.Cmd, format, a...)
}

func (r CommandReporter) Createdf(format string, a ...any) {
	_ = FprintSuccess(r.Cmd, format, a...)
}

func (r CommandReporter) Skippedf(format string, a ...any) {
	_ = FprintPlain(r.Cmd, "Skipped: "+format, a...)
}

func (r CommandReporter) Warnf(format string, a ...any) {
	_ = FprintWarning(r.Cmd, "Warning: "+format, a...)
}

package provision

import (
	"fmt"
	"log/slog"
)

// NopReporter discards all progress messages.
type NopReporter struct{}

func (NopReporter) Infof(string, ...any)    {}
func (NopReporter) Createdf(string, ...any) {}
func (NopReporter) Skippedf(string, ...any) {}
func (NopReporter) Warnf(string, ...any)    {}

// SlogReporter forwards progress messages to the default logger.
type SlogReporter struct{}

func (SlogReporter) Infof(format string, a ...any) {
	slog.Info(fmt.Sprintf(format, a...))
}

func (SlogReporter) Createdf(format string, a ...any) {
	slog.Info(fmt.Sprintf(format, a...))
}

func (SlogReporter) Skippedf(format string, a ...any) {
	slog.Info(fmt.Sprintf(format, a...))
}

func (SlogReporter) Warnf(format string, a ...any) {
	slog.Warn(fmt.Sprintf(format, a...))
}

// NopRecorder discards all step outcomes.
type NopRecorder struct{}

func (NopRecorder) Step(string, string, string) {}

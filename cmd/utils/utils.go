// Package utils provides utility functions for CLI commands in siteforge.
package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siteforge-io/siteforge/cmd/output"
	"github.com/siteforge-io/siteforge/domain"
)

// HandleCommandError prints a colored error identifying the failed step,
// with a remediation hint when the error carries one, and exits non-zero.
func HandleCommandError(operation string, err error, context ...any) {
	slog.Error("Command failed", append([]any{"operation", operation, "error", err}, context...)...)

	var mutErr *domain.MutationError
	var authErr *domain.AuthError
	var cfgErr *domain.ConfigError

	switch {
	case errors.As(err, &cfgErr):
		output.PrintToStderr(output.Error, "Error: %v", cfgErr)
	case errors.As(err, &authErr):
		output.PrintToStderr(output.Error, "Error: %v", authErr)
		output.PrintToStderr(output.Warning, "Check that your %s credential in the settings file is valid.", authErr.Provider)
	case errors.As(err, &mutErr):
		output.PrintToStderr(output.Error, "Error: %v", mutErr)
		if mutErr.Hint != "" {
			output.PrintToStderr(output.Warning, "Hint: %s", mutErr.Hint)
		}
	default:
		output.PrintToStderr(output.Error, "Error: %s failed: %v", operation, err)
	}
	os.Exit(1)
}

// LineReader reads operator input line by line. One reader must be shared
// across all prompts of a command invocation so that buffered input is not
// lost between prompts.
type LineReader struct {
	reader *bufio.Reader
}

func NewLineReader(in io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(in)}
}

// Prompt writes the prompt to the command's output stream and reads one
// trimmed line.
func (l *LineReader) Prompt(cmd *cobra.Command, prompt string) (string, error) {
	if _, err := fmt.Fprint(cmd.OutOrStdout(), prompt); err != nil {
		return "", err
	}

	line, err := l.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

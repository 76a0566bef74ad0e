package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that a probe found no resource. It is not a failure;
// it drives the Absent branch of the orchestrator.
var ErrNotFound = errors.New("resource not found")

// IsNotFound reports whether err means the probed resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ConfigError reports missing or invalid settings. Always fatal, raised
// before any mutating call is issued.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required settings: %s", strings.Join(e.Missing, ", "))
}

// AuthError reports that a provider rejected its credential.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransientError reports a network or timeout failure on a read-only call.
// The caller may retry once; it is never retried automatically.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// MutationError reports a failed create, update or delete call. Fatal during
// provisioning; downgraded to a warning during teardown.
type MutationError struct {
	Step     string
	Resource ResourceType
	Err      error
	Hint     string
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Step, e.Resource, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Package shell runs the external control utilities (mtx, mt, tapeinfo,
// lsscsi) and reports their exit code, stdout, and stderr. Everything above
// this package sees commands through the Runner interface so tests can
// substitute a fake.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Result holds the outcome of one external command invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the command exited zero.
func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner executes an external command and returns its result. A non-nil
// error means the command could not be started at all; a nonzero exit code
// is reported through Result, not the error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Local runs commands on the local host.
type Local struct {
	logger *slog.Logger
}

// NewLocal returns a Runner backed by os/exec.
func NewLocal(logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{logger: logger}
}

// Run executes name with args, blocking until the process exits.
func (l *Local) Run(ctx context.Context, name string, args ...string) (Result, error) {
	l.logger.Debug("running command", "cmd", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("starting %s: %w", name, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	l.logger.Debug("command finished",
		"cmd", name,
		"exit_code", res.ExitCode,
		"stdout_bytes", len(res.Stdout),
		"stderr_bytes", len(res.Stderr),
	)
	return res, nil
}

package changer

import (
	"errors"
	"fmt"
	"strings"
)

// ToolError reports an external control-utility invocation that exited
// nonzero. It is fatal, never retried, and carries the tool's own exit code
// for the dispatcher to propagate.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Detail   string
}

func (e *ToolError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = fmt.Sprintf("%s failed", e.Tool)
	}
	stderr := strings.TrimRight(e.Stderr, "\n")
	if stderr != "" {
		return msg + " Err: " + stderr
	}
	return msg
}

// GuardError reports a transfer refused before the underlying tool was
// invoked: nothing to move, or the destination would be overwritten.
type GuardError struct {
	Reason string
}

func (e *GuardError) Error() string {
	return e.Reason
}

// TimeoutError reports a drive that never signaled ready within the
// configured wait window.
type TimeoutError struct {
	DriveDevice string
	DriveIndex  int
	WaitSeconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf(
		"timeout after %d seconds waiting for drive device %s (drive index: %d) to signal that it is loaded; the drive index may be misconfigured",
		e.WaitSeconds, e.DriveDevice, e.DriveIndex,
	)
}

// UnknownCommandError reports a command name outside the supported surface.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("the command provided (%s) is not a valid command", e.Command)
}

// ExitCode maps a dispatcher error to the process exit code: 0 on nil, the
// tool's own exit code for hard failures, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode != 0 {
		return toolErr.ExitCode
	}
	return 1
}

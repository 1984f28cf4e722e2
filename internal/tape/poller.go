// Package tape covers the drive side of the library: readiness polling via
// mt, the platform-specific ready signature, diagnostic (sg) node
// resolution, and tapeinfo alert parsing.
package tape

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/revpol/tapechanger/internal/shell"
)

// Outcome is the result of waiting for a drive to become ready.
type Outcome int

const (
	// Ready means the drive reported the ready signature.
	Ready Outcome = iota
	// TimedOut means the signature never appeared within the window.
	TimedOut
)

// WaitReady polls `mt -f <drive> status` at a fixed 1-second cadence until
// the output matches the ready pattern, for up to maxWaitSeconds+1 attempts
// (inclusive boundary). Hardware readiness after a load is a matter of
// seconds, so the interval is fixed rather than backed off. sleep may be nil
// for time.Sleep.
func WaitReady(
	ctx context.Context,
	runner shell.Runner,
	mtBin, driveDevice, pattern string,
	maxWaitSeconds int,
	sleep func(time.Duration),
	logger *slog.Logger,
) (Outcome, error) {
	if sleep == nil {
		sleep = time.Sleep
	}
	if logger == nil {
		logger = slog.Default()
	}

	for s := 0; s <= maxWaitSeconds; s++ {
		res, err := runner.Run(ctx, mtBin, "-f", driveDevice, "status")
		if err != nil {
			return TimedOut, err
		}
		if strings.Contains(res.Stdout, pattern) {
			logger.Debug("drive reports ready", "drive_device", driveDevice, "attempts", s+1)
			return Ready, nil
		}
		logger.Debug("drive not ready, retrying in one second", "drive_device", driveDevice)
		sleep(time.Second)
	}

	logger.Warn("drive never reported ready",
		"drive_device", driveDevice, "max_wait_seconds", maxWaitSeconds)
	return TimedOut, nil
}

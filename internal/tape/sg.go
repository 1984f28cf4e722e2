package tape

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/revpol/tapechanger/internal/shell"
)

var (
	reStNode     = regexp.MustCompile(`/dev/n?(st\d+)`)
	reByIDNode   = regexp.MustCompile(`/dev/tape/by-id/scsi-3(.+?)-`)
	reByPathLink = regexp.MustCompile(`-> .*/n?(st\d+)`)
	reSGNode     = regexp.MustCompile(`(/dev/sg\d+)`)
)

// ResolveSGNode maps a drive's archive-device path to the /dev/sg# node
// tapeinfo needs. The archive device may be given as /dev/st# or /dev/nst#,
// as a /dev/tape/by-id symlink, or as a /dev/tape/by-path symlink; the
// resolved identity is then matched against `lsscsi -ug` output rather than
// trusting any configured control device.
func ResolveSGNode(ctx context.Context, runner shell.Runner, lsscsiBin, driveDevice string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var key string
	switch {
	case strings.Contains(driveDevice, "/dev/st") || strings.Contains(driveDevice, "/dev/nst"):
		m := reStNode.FindStringSubmatch(driveDevice)
		if m == nil {
			return "", fmt.Errorf("unrecognized st device path %q", driveDevice)
		}
		key = m[1]
	case strings.Contains(driveDevice, "/by-id"):
		m := reByIDNode.FindStringSubmatch(driveDevice)
		if m == nil {
			return "", fmt.Errorf("unrecognized by-id device path %q", driveDevice)
		}
		key = m[1]
	case strings.Contains(driveDevice, "/by-path"):
		res, err := runner.Run(ctx, "ls", "-l", driveDevice)
		if err != nil {
			return "", fmt.Errorf("reading by-path link: %w", err)
		}
		m := reByPathLink.FindStringSubmatch(strings.TrimRight(res.Stdout, "\n"))
		if m == nil {
			return "", fmt.Errorf("could not resolve by-path link for %q", driveDevice)
		}
		key = m[1]
	default:
		return "", fmt.Errorf("unrecognized drive device path %q", driveDevice)
	}

	res, err := runner.Run(ctx, lsscsiBin, "-ug")
	if err != nil {
		return "", fmt.Errorf("running lsscsi: %w", err)
	}
	if !res.Ok() {
		logger.Warn("lsscsi exited nonzero", "exit_code", res.ExitCode, "stderr", res.Stderr)
	}

	for _, line := range strings.Split(res.Stdout, "\n") {
		if !strings.Contains(line, key+" ") && !strings.HasSuffix(line, key) {
			continue
		}
		if m := reSGNode.FindStringSubmatch(line); m != nil {
			logger.Debug("resolved sg node", "drive_device", driveDevice, "sg", m[1])
			return m[1], nil
		}
	}
	return "", fmt.Errorf("no sg node found for drive device %s", driveDevice)
}

package tape

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/revpol/tapechanger/internal/shell"
)

// ReadySignature determines the string that marks a loaded drive as ready
// in `mt status` output. The signature depends on the OS and, on Linux, on
// which mt flavor is installed: Debian systems without mt-st and other
// systems with GNU cpio's mt both report "drive status"; every other Linux
// reports "ONLINE".
func ReadySignature(ctx context.Context, runner shell.Runner, mtBin string) (string, error) {
	res, err := runner.Run(ctx, "uname")
	if err != nil {
		return "", fmt.Errorf("determining OS: %w", err)
	}

	switch strings.TrimSpace(res.Stdout) {
	case "Linux":
		return linuxReadySignature(ctx, runner, mtBin)
	case "SunOS":
		return "No Additional Sense", nil
	case "FreeBSD":
		return "Current Driver State: at rest.", nil
	default:
		return "", fmt.Errorf("could not determine the OS using the uname utility (got %q)", strings.TrimSpace(res.Stdout))
	}
}

func linuxReadySignature(ctx context.Context, runner shell.Runner, mtBin string) (string, error) {
	res, err := runner.Run(ctx, mtBin, "--version")
	if err != nil {
		return "", fmt.Errorf("probing mt flavor: %w", err)
	}

	if _, statErr := os.Stat("/etc/debian_version"); statErr == nil {
		if !strings.Contains(res.Stdout, "mt-st") {
			return "drive status", nil
		}
	} else if strings.Contains(res.Stdout, "GNU cpio") {
		return "drive status", nil
	}
	return "ONLINE", nil
}

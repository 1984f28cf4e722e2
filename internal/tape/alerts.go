package tape

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/revpol/tapechanger/internal/shell"
)

var reTapeAlert = regexp.MustCompile(`TapeAlert\[(\d+)\]: +(.*)`)

// Alert is one TapeAlert entry reported by tapeinfo.
type Alert struct {
	Code string
	Text string
}

// Alerts queries tapeinfo on the given sg node and returns every TapeAlert
// entry found. A nonzero tapeinfo exit is logged and whatever output was
// produced is still parsed; alerts are advisory, not transactional.
func Alerts(ctx context.Context, runner shell.Runner, tapeinfoBin, sgNode string, logger *slog.Logger) ([]Alert, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res, err := runner.Run(ctx, tapeinfoBin, "-f", sgNode)
	if err != nil {
		return nil, err
	}
	if !res.Ok() {
		logger.Warn("tapeinfo exited nonzero",
			"sg", sgNode, "exit_code", res.ExitCode, "stderr", res.Stderr)
	}

	var alerts []Alert
	for _, m := range reTapeAlert.FindAllStringSubmatch(res.Stdout, -1) {
		alerts = append(alerts, Alert{Code: m[1], Text: m[2]})
	}
	return alerts, nil
}

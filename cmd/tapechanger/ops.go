package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/revpol/tapechanger/internal/changer"
	"github.com/revpol/tapechanger/internal/shell"
	"github.com/revpol/tapechanger/internal/store"
)

// parseRequest builds the Operation Request from the storage daemon's
// positional arguments. The daemon always passes the full argument list
// (<changer-device> <slot> <drive-device> <drive-index> [jobid] [jobname])
// even for commands that need only part of it, so trailing arguments are
// optional everywhere. For a transfer the destination slot arrives in the
// drive-device position.
func parseRequest(command string, args []string) *changer.Request {
	req := &changer.Request{Command: command}

	get := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	req.ChangerDevice = get(0)
	req.Slot, _ = strconv.Atoi(get(1))
	req.DriveDevice = get(2)
	req.DriveIndex, _ = strconv.Atoi(get(3))
	req.JobID = get(4)
	req.JobName = get(5)

	if command == "transfer" {
		req.DestinationSlot, _ = strconv.Atoi(get(2))
	}
	return req
}

// runOperation dispatches one changer command, prints its stdout payload,
// and records the invocation in the history store. The returned error is
// mapped to the process exit code in main.
func runOperation(command string, args []string) error {
	req := parseRequest(command, args)

	opLogger := logger
	if globalCfg.ChangerName != "" {
		opLogger = opLogger.With("changer", globalCfg.ChangerName)
	}
	if req.JobID != "" {
		opLogger = opLogger.With("jobid", req.JobID)
	}
	if req.JobName != "" && req.JobName != "*System*" {
		opLogger = opLogger.With("job", req.JobName)
	}

	opLogger.Debug("starting operation",
		"command", command,
		"changer_device", req.ChangerDevice,
		"slot", req.Slot,
		"drive_device", req.DriveDevice,
		"drive_index", req.DriveIndex,
		"config", cfgPath,
	)

	ctrl := changer.New(globalCfg, shell.NewLocal(opLogger), opLogger)

	start := time.Now()
	out, vol, err := ctrl.Dispatch(context.Background(), req)
	end := time.Now()

	if out != "" {
		fmt.Println(out)
	}

	recordOperation(req, vol, out, err, start, end)
	return err
}

// recordOperation writes one history row; failures are logged, never fatal.
func recordOperation(req *changer.Request, volume, output string, opErr error, start, end time.Time) {
	if globalStore == nil {
		return
	}

	op := &store.Operation{
		Command:       req.Command,
		ChangerDevice: req.ChangerDevice,
		Slot:          req.Slot,
		DriveDevice:   req.DriveDevice,
		DriveIndex:    req.DriveIndex,
		Volume:        volume,
		JobID:         req.JobID,
		JobName:       req.JobName,
		Status:        "success",
		Output:        output,
		StartTime:     start,
		EndTime:       end,
	}
	if opErr != nil {
		op.Status = "failed"
		op.ExitCode = changer.ExitCode(opErr)
		op.Output = opErr.Error()
	}

	if err := globalStore.RecordOperation(op); err != nil {
		logger.Warn("failed to record operation history", "error", err)
	}
}

package changer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/revpol/tapechanger/internal/config"
	"github.com/revpol/tapechanger/internal/shell"
	"github.com/revpol/tapechanger/internal/tape"
)

// Controller sequences changer operations against the external control
// utilities. One invocation handles exactly one command; there is no
// internal locking because serialization across invocations is external to
// the process.
type Controller struct {
	cfg    *config.Settings
	runner shell.Runner
	logger *slog.Logger

	sleep   func(time.Duration)
	randInt func(n int) int
}

// New returns a Controller using the given runner for all external calls.
func New(cfg *config.Settings, runner shell.Runner, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		sleep:   time.Sleep,
		randInt: rand.Intn,
	}
}

// rawStatus returns the changer's status dump. When refresh is set the
// library's inventory is re-read first; some libraries report stale element
// state otherwise. A nonzero exit from either call is fatal and carries the
// tool's own exit code.
func (c *Controller) rawStatus(ctx context.Context, changerDevice string, refresh bool) (string, error) {
	if refresh {
		res, err := c.runner.Run(ctx, c.cfg.MtxBin, "-f", changerDevice, "inventory")
		if err != nil {
			return "", err
		}
		if !res.Ok() {
			return "", &ToolError{
				Tool:     c.cfg.MtxBin,
				ExitCode: res.ExitCode,
				Stderr:   res.Stderr,
				Detail:   fmt.Sprintf("Failed to refresh inventory of changer device %s.", changerDevice),
			}
		}
	}

	res, err := c.runner.Run(ctx, c.cfg.MtxBin, "-f", changerDevice, "status")
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", &ToolError{
			Tool:     c.cfg.MtxBin,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Detail:   fmt.Sprintf("Failed to read status of changer device %s.", changerDevice),
		}
	}
	return res.Stdout, nil
}

// Snapshot obtains and parses a fresh status dump.
func (c *Controller) Snapshot(ctx context.Context, changerDevice string) (*Snapshot, error) {
	raw, err := c.rawStatus(ctx, changerDevice, c.cfg.InventoryBeforeList)
	if err != nil {
		return nil, err
	}
	snap := Parse(raw, c.cfg.IncludeImportExport, c.cfg.VXAPacketLoader)
	if snap.Empty() {
		c.logger.Warn("status dump contained no recognizable elements", "changer_device", changerDevice)
	}
	return snap, nil
}

// Slots returns the total storage-slot count from the status summary line.
// A missing summary line yields "0", not an error.
func (c *Controller) Slots(ctx context.Context, req *Request) (string, error) {
	raw, err := c.rawStatus(ctx, req.ChangerDevice, false)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(ParseSlotCount(raw)), nil
}

// Load loads a volume from a slot into a drive. For data loads the drive is
// then polled until it reports ready; cleaning loads skip the poll since a
// fixed clean-duration wait substitutes for it.
func (c *Controller) Load(ctx context.Context, req *Request, volume string, op OpContext) error {
	c.logger.Info("loading volume",
		"volume", volume, "slot", req.Slot,
		"drive_device", req.DriveDevice, "drive_index", req.DriveIndex,
		"cleaning", op.Cleaning)

	res, err := c.runner.Run(ctx, c.cfg.MtxBin, "-f", req.ChangerDevice,
		"load", strconv.Itoa(req.Slot), strconv.Itoa(req.DriveIndex))
	if err != nil {
		return err
	}
	if !res.Ok() {
		return &ToolError{
			Tool:     c.cfg.MtxBin,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Detail: fmt.Sprintf("Failed to load drive device %s (drive index: %d)%s from slot %d.",
				req.DriveDevice, req.DriveIndex, volumeTag(volume), req.Slot),
		}
	}

	if op.Cleaning {
		return nil
	}

	if c.cfg.LoadSleepSeconds > 0 {
		c.logger.Debug("sleeping to let the drive settle", "seconds", c.cfg.LoadSleepSeconds)
		c.sleep(time.Duration(c.cfg.LoadSleepSeconds) * time.Second)
	}

	pattern, err := tape.ReadySignature(ctx, c.runner, c.cfg.MtBin)
	if err != nil {
		return fmt.Errorf("resolving drive ready signature: %w", err)
	}
	outcome, err := tape.WaitReady(ctx, c.runner, c.cfg.MtBin, req.DriveDevice,
		pattern, c.cfg.LoadWaitSeconds, c.sleep, c.logger)
	if err != nil {
		return fmt.Errorf("waiting for drive to become ready: %w", err)
	}
	if outcome == tape.TimedOut {
		return &TimeoutError{
			DriveDevice: req.DriveDevice,
			DriveIndex:  req.DriveIndex,
			WaitSeconds: c.cfg.LoadWaitSeconds,
		}
	}

	c.logger.Info("volume loaded",
		"volume", volume, "slot", req.Slot, "drive_index", req.DriveIndex)
	return nil
}

// Unload moves the volume in a drive back to its slot. A successful unload
// of a data volume then enters the cleaning orchestrator; cleaning-internal
// unloads never do.
func (c *Controller) Unload(ctx context.Context, req *Request, snap *Snapshot, volume string, op OpContext) error {
	if c.cfg.OfflineBeforeUnload && req.DriveDevice != "" {
		c.logger.Debug("sending drive offline before unload", "drive_device", req.DriveDevice)
		res, err := c.runner.Run(ctx, c.cfg.MtBin, "-f", req.DriveDevice, "offline")
		if err != nil {
			return err
		}
		if !res.Ok() {
			c.logger.Warn("mt offline failed, continuing with unload",
				"drive_device", req.DriveDevice, "exit_code", res.ExitCode, "stderr", res.Stderr)
		}
		if c.cfg.OfflineSleepSeconds > 0 {
			c.logger.Debug("sleeping to let the drive settle before unload", "seconds", c.cfg.OfflineSleepSeconds)
			c.sleep(time.Duration(c.cfg.OfflineSleepSeconds) * time.Second)
		}
	}

	c.logger.Info("unloading volume",
		"volume", volume, "slot", req.Slot,
		"drive_device", req.DriveDevice, "drive_index", req.DriveIndex,
		"cleaning", op.Cleaning)

	res, err := c.runner.Run(ctx, c.cfg.MtxBin, "-f", req.ChangerDevice,
		"unload", strconv.Itoa(req.Slot), strconv.Itoa(req.DriveIndex))
	if err != nil {
		return err
	}
	if !res.Ok() {
		return &ToolError{
			Tool:     c.cfg.MtxBin,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Detail: fmt.Sprintf("Failed to unload drive device %s (drive index: %d)%s to slot %d.",
				req.DriveDevice, req.DriveIndex, volumeTag(volume), req.Slot),
		}
	}

	c.logger.Info("volume unloaded",
		"volume", volume, "slot", req.Slot, "drive_index", req.DriveIndex)

	if op.Cleaning {
		c.logger.Debug("cleaning tape unloaded, skipping drive check")
		return nil
	}
	return c.afterUnload(ctx, req, snap)
}

// Transfer moves a volume between two storage slots. The underlying tool's
// behavior on an empty source or occupied destination is undefined at the
// hardware level, so those cases are refused before any command is issued.
func (c *Controller) Transfer(ctx context.Context, req *Request, srcVol, dstVol string) error {
	if srcVol == "" {
		return &GuardError{Reason: fmt.Sprintf(
			"Refusing to transfer from slot %d to slot %d: source slot %d is empty.",
			req.Slot, req.DestinationSlot, req.Slot)}
	}
	if dstVol != "" {
		return &GuardError{Reason: fmt.Sprintf(
			"Refusing to transfer from slot %d to slot %d: destination slot %d already contains volume %s.",
			req.Slot, req.DestinationSlot, req.DestinationSlot, dstVol)}
	}

	c.logger.Info("transferring volume",
		"volume", srcVol, "source_slot", req.Slot, "destination_slot", req.DestinationSlot)

	res, err := c.runner.Run(ctx, c.cfg.MtxBin, "-f", req.ChangerDevice,
		"transfer", strconv.Itoa(req.Slot), strconv.Itoa(req.DestinationSlot))
	if err != nil {
		return err
	}
	if !res.Ok() {
		return &ToolError{
			Tool:     c.cfg.MtxBin,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Detail: fmt.Sprintf("Failed to transfer volume (%s) from slot %d to slot %d.",
				srcVol, req.Slot, req.DestinationSlot),
		}
	}

	c.logger.Info("volume transferred",
		"volume", srcVol, "source_slot", req.Slot, "destination_slot", req.DestinationSlot)
	return nil
}

func volumeTag(volume string) string {
	if volume == "" {
		return ""
	}
	return " with volume (" + volume + ")"
}

package changer

import (
	"context"
	"slices"
	"time"

	"github.com/revpol/tapechanger/internal/tape"
)

// afterUnload runs the cleaning check for a drive that was just vacated by
// a successful data unload. The requested unload has already completed, so
// every condition that prevents a clean (no diagnostic node, no alerts, no
// cleaning tape) downgrades to a no-op rather than an error; only a tool
// failure while actually moving the cleaning tape propagates.
func (c *Controller) afterUnload(ctx context.Context, req *Request, snap *Snapshot) error {
	sg, err := tape.ResolveSGNode(ctx, c.runner, c.cfg.LsscsiBin, req.DriveDevice, c.logger)
	if err != nil {
		c.logger.Warn("no diagnostic node for drive, skipping drive check",
			"drive_device", req.DriveDevice, "error", err)
		return nil
	}

	alerts, err := tape.Alerts(ctx, c.runner, c.cfg.TapeinfoBin, sg, c.logger)
	if err != nil {
		c.logger.Warn("tapeinfo unavailable, skipping drive check", "sg", sg, "error", err)
		return nil
	}
	if len(alerts) == 0 {
		c.logger.Debug("no tape alerts detected", "drive_device", req.DriveDevice)
		return nil
	}

	for _, a := range alerts {
		c.logger.Warn("tape alert",
			"drive_device", req.DriveDevice, "sg", sg, "code", a.Code, "text", a.Text)
	}
	if !c.cfg.CheckDrive {
		return nil
	}

	needsClean := false
	for _, a := range alerts {
		if slices.Contains(c.cfg.CleaningAlertCodes, a.Code) {
			needsClean = true
			break
		}
	}
	if !needsClean {
		c.logger.Debug("no drive-needs-cleaning alerts detected", "drive_device", req.DriveDevice)
		return nil
	}

	if !c.cfg.AutoClean {
		c.logger.Warn("drive requires cleaning but auto_clean is disabled",
			"drive_device", req.DriveDevice, "drive_index", req.DriveIndex)
		return nil
	}
	return c.clean(ctx, req, snap)
}

// clean loads a cleaning tape into the just-vacated drive, waits the
// configured clean duration, and returns the tape to its home slot. The
// candidate is picked uniformly at random so one cleaning tape is not worn
// out while others sit unused. All sub-operations carry the cleaning
// context so they never re-enter the orchestrator.
func (c *Controller) clean(ctx context.Context, req *Request, snap *Snapshot) error {
	candidates := snap.CleaningCandidates(c.cfg.CleaningLabelPrefix)
	if len(candidates) == 0 {
		c.logger.Warn("no cleaning tapes in library, skipping automatic cleaning",
			"label_prefix", c.cfg.CleaningLabelPrefix)
		return nil
	}

	cand := candidates[c.randInt(len(candidates))]
	c.logger.Info("selected cleaning tape",
		"volume", cand.Volume, "slot", cand.Slot, "candidates", len(candidates))

	cleaning := OpContext{Cleaning: true}

	if cand.InDrive {
		c.logger.Info("cleaning tape is resident in a drive, returning it to its slot first",
			"volume", cand.Volume, "drive_index", cand.DriveIndex, "slot", cand.Slot)
		home := &Request{
			ChangerDevice: req.ChangerDevice,
			Slot:          cand.Slot,
			DriveIndex:    cand.DriveIndex,
		}
		if err := c.Unload(ctx, home, snap, cand.Volume, cleaning); err != nil {
			return err
		}
	}

	load := &Request{
		ChangerDevice: req.ChangerDevice,
		Slot:          cand.Slot,
		DriveDevice:   req.DriveDevice,
		DriveIndex:    req.DriveIndex,
	}
	if err := c.Load(ctx, load, cand.Volume, cleaning); err != nil {
		return err
	}

	c.logger.Info("cleaning tape loaded, waiting for the clean cycle",
		"volume", cand.Volume, "seconds", c.cfg.CleanWaitSeconds)
	c.sleep(time.Duration(c.cfg.CleanWaitSeconds) * time.Second)

	return c.Unload(ctx, load, snap, cand.Volume, cleaning)
}

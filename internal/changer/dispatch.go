package changer

import (
	"context"
	"strconv"
)

// Dispatch routes a validated request to its handler. It returns the stdout
// payload and, for volume-bearing commands, the resolved volume label. It
// is the single point below main that sees every outcome; all fatal
// conditions come back as typed errors that ExitCode maps to the process
// exit code.
func (c *Controller) Dispatch(ctx context.Context, req *Request) (output, volume string, err error) {
	switch req.Command {
	case "list":
		snap, err := c.Snapshot(ctx, req.ChangerDevice)
		if err != nil {
			return "", "", err
		}
		return snap.List(), "", nil

	case "listall":
		snap, err := c.Snapshot(ctx, req.ChangerDevice)
		if err != nil {
			return "", "", err
		}
		return snap.ListAll(), "", nil

	case "slots":
		out, err := c.Slots(ctx, req)
		return out, "", err

	case "loaded":
		snap, err := c.Snapshot(ctx, req.ChangerDevice)
		if err != nil {
			return "", "", err
		}
		vol := ""
		for _, d := range snap.Drives {
			if d.Number == req.DriveIndex && d.Full {
				vol = d.Volume
				break
			}
		}
		return strconv.Itoa(snap.LoadedSlot(req.DriveIndex)), vol, nil

	case "load":
		snap, err := c.Snapshot(ctx, req.ChangerDevice)
		if err != nil {
			return "", "", err
		}
		vol := snap.ResolveLoadVolume(req.Slot, req.DriveIndex)
		return "", vol, c.Load(ctx, req, vol, OpContext{})

	case "unload":
		snap, err := c.Snapshot(ctx, req.ChangerDevice)
		if err != nil {
			return "", "", err
		}
		vol := snap.ResolveUnloadVolume(req.Slot, req.DriveIndex)
		return "", vol, c.Unload(ctx, req, snap, vol, OpContext{})

	case "transfer":
		snap, err := c.Snapshot(ctx, req.ChangerDevice)
		if err != nil {
			return "", "", err
		}
		srcVol, dstVol := snap.ResolveTransferVolumes(req.Slot, req.DestinationSlot)
		return "", srcVol, c.Transfer(ctx, req, srcVol, dstVol)

	default:
		return "", "", &UnknownCommandError{Command: req.Command}
	}
}

package changer

import "strings"

// VolumeInSlot returns the label of the volume stored in the given storage
// or import/export slot, or "" if the slot is empty or unknown.
func (s *Snapshot) VolumeInSlot(slot int) string {
	for _, e := range s.Slots {
		if e.Number == slot && e.Full {
			return e.Volume
		}
	}
	for _, e := range s.ImportExports {
		if e.Number == slot && e.Full {
			return e.Volume
		}
	}
	return ""
}

// ResolveLoadVolume resolves the label for a load request. If the slot is
// not occupied, the requested volume may already be resident in the target
// drive; fall back to the drive whose resident volume came from that slot.
// An empty result is not an error: the load attempt still proceeds and
// fails at the hardware level if truly invalid.
func (s *Snapshot) ResolveLoadVolume(slot, driveIndex int) string {
	if vol := s.VolumeInSlot(slot); vol != "" {
		return vol
	}
	for _, d := range s.Drives {
		if d.Number == driveIndex && d.Full && d.SourceSlot == slot {
			return d.Volume
		}
	}
	return ""
}

// ResolveUnloadVolume resolves the label for an unload request: the volume
// in the given drive whose source slot matches the requested slot, else "".
func (s *Snapshot) ResolveUnloadVolume(slot, driveIndex int) string {
	for _, d := range s.Drives {
		if d.Number == driveIndex && d.Full && d.SourceSlot == slot {
			return d.Volume
		}
	}
	return ""
}

// ResolveTransferVolumes resolves source and destination labels for a
// slot-to-slot transfer, independently.
func (s *Snapshot) ResolveTransferVolumes(srcSlot, dstSlot int) (string, string) {
	return s.VolumeInSlot(srcSlot), s.VolumeInSlot(dstSlot)
}

// CleaningCandidate is a cleaning tape found in the snapshot: its home
// storage slot, its label, and whether it currently sits inside a drive.
type CleaningCandidate struct {
	Slot       int
	Volume     string
	DriveIndex int
	InDrive    bool
}

// CleaningCandidates returns every volume whose label starts with the
// configured cleaning prefix, wherever it currently resides.
func (s *Snapshot) CleaningCandidates(prefix string) []CleaningCandidate {
	if prefix == "" {
		return nil
	}
	var out []CleaningCandidate
	for _, d := range s.Drives {
		if d.Full && strings.HasPrefix(d.Volume, prefix) {
			out = append(out, CleaningCandidate{
				Slot:       d.SourceSlot,
				Volume:     d.Volume,
				DriveIndex: d.Number,
				InDrive:    true,
			})
		}
	}
	for _, e := range s.Slots {
		if e.Full && strings.HasPrefix(e.Volume, prefix) {
			out = append(out, CleaningCandidate{Slot: e.Number, Volume: e.Volume})
		}
	}
	for _, e := range s.ImportExports {
		if e.Full && strings.HasPrefix(e.Volume, prefix) {
			out = append(out, CleaningCandidate{Slot: e.Number, Volume: e.Volume})
		}
	}
	return out
}

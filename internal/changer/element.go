// Package changer interprets the autochanger's status output and sequences
// load, unload, transfer, and cleaning operations against the external
// control utilities.
package changer

import (
	"fmt"
	"strings"
)

// ElementKind identifies what a library element is.
type ElementKind int

const (
	// DataTransfer is a tape drive, zero-indexed.
	DataTransfer ElementKind = iota
	// Storage is a media storage slot, one-indexed.
	Storage
	// ImportExport is a storage slot reachable from outside the enclosure.
	ImportExport
)

func (k ElementKind) String() string {
	switch k {
	case DataTransfer:
		return "drive"
	case Storage:
		return "slot"
	case ImportExport:
		return "import/export"
	default:
		return "unknown"
	}
}

// Element is one drive or slot as reported by the changer. For a Full drive,
// SourceSlot records which storage slot the resident volume came from.
// Volume is set iff Full.
type Element struct {
	Kind       ElementKind
	Number     int
	Full       bool
	SourceSlot int
	Volume     string
}

// Snapshot is one immutable parse of the changer's status text. Element
// order within each group matches the device's reported order: drives first,
// then storage slots, then import/export slots.
type Snapshot struct {
	Drives        []Element
	Slots         []Element
	ImportExports []Element
}

// Empty reports whether no recognizable elements were found.
func (s *Snapshot) Empty() bool {
	return len(s.Drives) == 0 && len(s.Slots) == 0 && len(s.ImportExports) == 0
}

// Elements returns all elements in device-reported order.
func (s *Snapshot) Elements() []Element {
	out := make([]Element, 0, len(s.Drives)+len(s.Slots)+len(s.ImportExports))
	out = append(out, s.Drives...)
	out = append(out, s.Slots...)
	out = append(out, s.ImportExports...)
	return out
}

// ListAll renders every element in the canonical token form the storage
// daemon expects: D:<idx>:F:<slot>:<vol> / D:<idx>:E for drives,
// S:<slot>:F:<vol> / S:<slot>:E for slots, I:... for import/export. One
// token per line, no trailing newline.
func (s *Snapshot) ListAll() string {
	var lines []string
	for _, e := range s.Elements() {
		lines = append(lines, listAllToken(e))
	}
	return strings.Join(lines, "\n")
}

func listAllToken(e Element) string {
	prefix := "S"
	switch e.Kind {
	case DataTransfer:
		if e.Full {
			return fmt.Sprintf("D:%d:F:%d:%s", e.Number, e.SourceSlot, e.Volume)
		}
		return fmt.Sprintf("D:%d:E", e.Number)
	case ImportExport:
		prefix = "I"
	}
	if e.Full {
		return fmt.Sprintf("%s:%d:F:%s", prefix, e.Number, e.Volume)
	}
	return fmt.Sprintf("%s:%d:E", prefix, e.Number)
}

// List renders only the occupied elements in the reduced <slot>:<volume>
// form. Volumes resident in a drive are reported under their source storage
// slot.
func (s *Snapshot) List() string {
	var lines []string
	for _, e := range s.Elements() {
		if !e.Full {
			continue
		}
		slot := e.Number
		if e.Kind == DataTransfer {
			slot = e.SourceSlot
		}
		lines = append(lines, fmt.Sprintf("%d:%s", slot, e.Volume))
	}
	return strings.Join(lines, "\n")
}

// LoadedSlot returns the source slot of the volume in the given drive, or 0
// if the drive is empty or unknown.
func (s *Snapshot) LoadedSlot(driveIndex int) int {
	for _, d := range s.Drives {
		if d.Number == driveIndex && d.Full {
			return d.SourceSlot
		}
	}
	return 0
}

package changer

import (
	"regexp"
	"strconv"
	"strings"
)

// The mtx status grammar varies between vendor dialects. Each dialect is an
// isolated line parser; Parse selects one from configuration instead of
// branching mid-parse.
type grammar interface {
	parseLine(line string) (Element, bool)
}

var (
	reDriveEmpty = regexp.MustCompile(`^Data Transfer Element (\d+):Empty`)
	reDriveFull  = regexp.MustCompile(`^Data Transfer Element (\d+):Full \(Storage Element (\d+) Loaded\):VolumeTag = (\S+)`)
	reSlotEmpty  = regexp.MustCompile(`^\s*Storage Element (\d+):Empty`)
	reSlotFull   = regexp.MustCompile(`^\s*Storage Element (\d+):Full :VolumeTag\s*=\s*(\S+)`)
	reIEEmpty    = regexp.MustCompile(`^\s*Storage Element (\d+) IMPORT/EXPORT:Empty`)
	reIEFull     = regexp.MustCompile(`^\s*Storage Element (\d+) IMPORT/EXPORT:Full :VolumeTag\s*=\s*(\S+)`)

	// VXA packet loaders report full storage slots without the
	// "Storage Element" prefix.
	rePacketSlotFull = regexp.MustCompile(`^\s*(\d+):Full :VolumeTag\s*=\s*(\S+)`)

	reSummary = regexp.MustCompile(`Storage Changer .* Drives, (\d+) Slots`)
)

// standardGrammar parses the common mtx status dialect. Import/export
// elements are recognized only when enabled.
type standardGrammar struct {
	includeImportExport bool
}

func (g standardGrammar) parseLine(line string) (Element, bool) {
	if m := reDriveFull.FindStringSubmatch(line); m != nil {
		return Element{
			Kind:       DataTransfer,
			Number:     atoi(m[1]),
			Full:       true,
			SourceSlot: atoi(m[2]),
			Volume:     m[3],
		}, true
	}
	if m := reDriveEmpty.FindStringSubmatch(line); m != nil {
		return Element{Kind: DataTransfer, Number: atoi(m[1])}, true
	}
	if m := reSlotFull.FindStringSubmatch(line); m != nil {
		return Element{Kind: Storage, Number: atoi(m[1]), Full: true, Volume: m[2]}, true
	}
	if m := reSlotEmpty.FindStringSubmatch(line); m != nil {
		return Element{Kind: Storage, Number: atoi(m[1])}, true
	}
	if g.includeImportExport {
		if m := reIEFull.FindStringSubmatch(line); m != nil {
			return Element{Kind: ImportExport, Number: atoi(m[1]), Full: true, Volume: m[2]}, true
		}
		if m := reIEEmpty.FindStringSubmatch(line); m != nil {
			return Element{Kind: ImportExport, Number: atoi(m[1])}, true
		}
	}
	return Element{}, false
}

// packetLoaderGrammar parses the reduced VXA packet-loader dialect: full
// storage lines lack the "Storage Element" prefix and import/export
// elements are never reported, even when enabled in configuration.
type packetLoaderGrammar struct{}

func (packetLoaderGrammar) parseLine(line string) (Element, bool) {
	if m := reDriveFull.FindStringSubmatch(line); m != nil {
		return Element{
			Kind:       DataTransfer,
			Number:     atoi(m[1]),
			Full:       true,
			SourceSlot: atoi(m[2]),
			Volume:     m[3],
		}, true
	}
	if m := reDriveEmpty.FindStringSubmatch(line); m != nil {
		return Element{Kind: DataTransfer, Number: atoi(m[1])}, true
	}
	if m := reSlotEmpty.FindStringSubmatch(line); m != nil {
		return Element{Kind: Storage, Number: atoi(m[1])}, true
	}
	if m := rePacketSlotFull.FindStringSubmatch(line); m != nil {
		return Element{Kind: Storage, Number: atoi(m[1]), Full: true, Volume: m[2]}, true
	}
	return Element{}, false
}

// Parse builds a Snapshot from raw mtx status text. Unrecognized lines are
// skipped; text with no recognizable lines yields an empty snapshot, which
// callers treat as valid-but-uninformative.
func Parse(raw string, includeImportExport, vxaPacketLoader bool) *Snapshot {
	var g grammar
	if vxaPacketLoader {
		g = packetLoaderGrammar{}
	} else {
		g = standardGrammar{includeImportExport: includeImportExport}
	}

	snap := &Snapshot{}
	for _, line := range strings.Split(raw, "\n") {
		e, ok := g.parseLine(line)
		if !ok {
			continue
		}
		switch e.Kind {
		case DataTransfer:
			snap.Drives = append(snap.Drives, e)
		case Storage:
			snap.Slots = append(snap.Slots, e)
		case ImportExport:
			snap.ImportExports = append(snap.ImportExports, e)
		}
	}
	return snap
}

// ParseSlotCount extracts the total storage-slot count from the status
// summary line, or 0 if no summary line is present.
func ParseSlotCount(raw string) int {
	m := reSummary.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	return atoi(m[1])
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

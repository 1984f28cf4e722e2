package changer

import (
	"reflect"
	"testing"
)

func testSnapshot() *Snapshot {
	return Parse(sampleStatus, true, false)
}

// TestResolveLoadVolume covers slot lookup and the already-in-drive fallback
func TestResolveLoadVolume(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name       string
		slot       int
		driveIndex int
		want       string
	}{
		{"volume in storage slot", 1, 0, "G03001TA"},
		{"volume in import/export slot", 42, 0, "G03029TA"},
		{"slot already loaded in the requested drive", 5, 0, "G03005TA"},
		{"slot already loaded but in a different drive", 5, 1, ""},
		{"empty slot", 3, 0, ""},
		{"unknown slot", 99, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snap.ResolveLoadVolume(tt.slot, tt.driveIndex); got != tt.want {
				t.Errorf("ResolveLoadVolume(%d, %d) = %q, want %q", tt.slot, tt.driveIndex, got, tt.want)
			}
		})
	}
}

// TestResolveUnloadVolume requires both drive index and source slot to match
func TestResolveUnloadVolume(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name       string
		slot       int
		driveIndex int
		want       string
	}{
		{"matching drive and slot", 5, 0, "G03005TA"},
		{"wrong slot", 4, 0, ""},
		{"wrong drive", 5, 1, ""},
		{"empty drive", 5, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snap.ResolveUnloadVolume(tt.slot, tt.driveIndex); got != tt.want {
				t.Errorf("ResolveUnloadVolume(%d, %d) = %q, want %q", tt.slot, tt.driveIndex, got, tt.want)
			}
		})
	}
}

// TestResolveTransferVolumes resolves source and destination independently
func TestResolveTransferVolumes(t *testing.T) {
	snap := testSnapshot()

	src, dst := snap.ResolveTransferVolumes(1, 3)
	if src != "G03001TA" || dst != "" {
		t.Errorf("ResolveTransferVolumes(1, 3) = (%q, %q), want (G03001TA, )", src, dst)
	}

	src, dst = snap.ResolveTransferVolumes(3, 2)
	if src != "" || dst != "G03002TA" {
		t.Errorf("ResolveTransferVolumes(3, 2) = (%q, %q), want (, G03002TA)", src, dst)
	}
}

// TestCleaningCandidates finds cleaning tapes wherever they reside
func TestCleaningCandidates(t *testing.T) {
	snap := testSnapshot()

	got := snap.CleaningCandidates("CLN")
	want := []CleaningCandidate{{Slot: 4, Volume: "CLN303L1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleaningCandidates(CLN) = %+v, want %+v", got, want)
	}

	if c := snap.CleaningCandidates("ZZZ"); len(c) != 0 {
		t.Errorf("CleaningCandidates(ZZZ) = %+v, want none", c)
	}
	if c := snap.CleaningCandidates(""); len(c) != 0 {
		t.Errorf("CleaningCandidates with empty prefix = %+v, want none", c)
	}
}

// TestCleaningCandidateInDrive reports the drive a cleaning tape sits in
func TestCleaningCandidateInDrive(t *testing.T) {
	raw := "Data Transfer Element 1:Full (Storage Element 4 Loaded):VolumeTag = CLN303L1\n" +
		"Storage Element 4:Empty\n" +
		"Storage Element 6:Full :VolumeTag=CLN304L1"
	snap := Parse(raw, false, false)

	got := snap.CleaningCandidates("CLN")
	want := []CleaningCandidate{
		{Slot: 4, Volume: "CLN303L1", DriveIndex: 1, InDrive: true},
		{Slot: 6, Volume: "CLN304L1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleaningCandidates = %+v, want %+v", got, want)
	}
}

package changer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/revpol/tapechanger/internal/config"
	"github.com/revpol/tapechanger/internal/shell"
)

func testConfig() *config.Settings {
	cfg := config.DefaultSettings()
	cfg.MtxBin = "mtx"
	cfg.MtBin = "mt"
	cfg.TapeinfoBin = "tapeinfo"
	cfg.LsscsiBin = "lsscsi"
	cfg.IncludeImportExport = true
	cfg.LoadWaitSeconds = 3
	cfg.CleanWaitSeconds = 1
	return cfg
}

func testController(cfg *config.Settings, fake *shell.Fake) *Controller {
	c := New(cfg, fake, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.sleep = func(time.Duration) {}
	c.randInt = func(int) int { return 0 }
	return c
}

func countCalls(fake *shell.Fake, prefix string) int {
	n := 0
	for _, line := range fake.CallLines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// TestDispatchListAll runs the listall command end to end against a canned
// status dump
func TestDispatchListAll(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{
		Stdout: "Data Transfer Element 0:Full (Storage Element 5 Loaded):VolumeTag = G03005TA\nStorage Element 5:Empty",
	})
	c := testController(testConfig(), fake)

	out, _, err := c.Dispatch(context.Background(), &Request{Command: "listall", ChangerDevice: "/dev/sg2"})
	if err != nil {
		t.Fatalf("Dispatch(listall) error = %v", err)
	}
	if want := "D:0:F:5:G03005TA\nS:5:E"; out != want {
		t.Errorf("listall output = %q, want %q", out, want)
	}
}

// TestDispatchLoadedEmptyDrive expects "0" for an empty drive
func TestDispatchLoadedEmptyDrive(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{Stdout: "Data Transfer Element 0:Empty"})
	c := testController(testConfig(), fake)

	out, _, err := c.Dispatch(context.Background(), &Request{Command: "loaded", ChangerDevice: "/dev/sg2", DriveIndex: 0})
	if err != nil {
		t.Fatalf("Dispatch(loaded) error = %v", err)
	}
	if out != "0" {
		t.Errorf("loaded output = %q, want %q", out, "0")
	}
}

// TestDispatchSlots parses the slot count from the summary line
func TestDispatchSlots(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{
		Stdout: "Storage Changer /dev/x 4 Drives, 44 Slots ( 4 Import/Export )",
	})
	c := testController(testConfig(), fake)

	out, _, err := c.Dispatch(context.Background(), &Request{Command: "slots", ChangerDevice: "/dev/sg2"})
	if err != nil {
		t.Fatalf("Dispatch(slots) error = %v", err)
	}
	if out != "44" {
		t.Errorf("slots output = %q, want %q", out, "44")
	}
}

// TestDispatchUnknownCommand surfaces a configuration error, not a crash
func TestDispatchUnknownCommand(t *testing.T) {
	c := testController(testConfig(), shell.NewFake())

	_, _, err := c.Dispatch(context.Background(), &Request{Command: "eject", ChangerDevice: "/dev/sg2"})
	var unknownErr *UnknownCommandError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Dispatch(eject) error = %v, want UnknownCommandError", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode(err))
	}
}

// TestStatusFailurePropagatesExitCode carries the tool's own exit code
func TestStatusFailurePropagatesExitCode(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{ExitCode: 3, Stderr: "cannot open SCSI device\n"})
	c := testController(testConfig(), fake)

	_, _, err := c.Dispatch(context.Background(), &Request{Command: "list", ChangerDevice: "/dev/sg2"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v, want ToolError", err)
	}
	if ExitCode(err) != 3 {
		t.Errorf("ExitCode = %d, want 3", ExitCode(err))
	}
	if !strings.Contains(err.Error(), "cannot open SCSI device") {
		t.Errorf("diagnostic %q should include the tool stderr", err.Error())
	}
}

// TestInventoryBeforeList refreshes the inventory before reading status
func TestInventoryBeforeList(t *testing.T) {
	cfg := testConfig()
	cfg.InventoryBeforeList = true
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{Stdout: "Data Transfer Element 0:Empty"})
	c := testController(cfg, fake)

	if _, _, err := c.Dispatch(context.Background(), &Request{Command: "list", ChangerDevice: "/dev/sg2"}); err != nil {
		t.Fatalf("Dispatch(list) error = %v", err)
	}

	lines := fake.CallLines()
	if len(lines) < 2 || lines[0] != "mtx -f /dev/sg2 inventory" || lines[1] != "mtx -f /dev/sg2 status" {
		t.Errorf("calls = %v, want inventory then status", lines)
	}
}

// TestTransferGuard verifies the underlying tool is invoked iff the source
// is full and the destination is empty
func TestTransferGuard(t *testing.T) {
	status := "Storage Element 1:Full :VolumeTag=G03001TA\n" +
		"Storage Element 2:Full :VolumeTag=G03002TA\n" +
		"Storage Element 3:Empty"

	tests := []struct {
		name     string
		src, dst int
		wantCall bool
	}{
		{"source full destination empty", 1, 3, true},
		{"source empty", 3, 2, false},
		{"destination occupied", 1, 2, false},
		{"source and destination both wrong", 3, 2, false},
		{"unknown slots", 8, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := shell.NewFake()
			fake.Respond("mtx -f /dev/sg2 status", shell.Result{Stdout: status})
			c := testController(testConfig(), fake)

			req := &Request{
				Command:         "transfer",
				ChangerDevice:   "/dev/sg2",
				Slot:            tt.src,
				DestinationSlot: tt.dst,
			}
			_, _, err := c.Dispatch(context.Background(), req)

			gotCall := countCalls(fake, "mtx -f /dev/sg2 transfer") == 1
			if gotCall != tt.wantCall {
				t.Errorf("transfer invoked = %v, want %v (calls: %v)", gotCall, tt.wantCall, fake.CallLines())
			}
			if tt.wantCall {
				if err != nil {
					t.Errorf("Dispatch(transfer) error = %v, want nil", err)
				}
			} else {
				var guardErr *GuardError
				if !errors.As(err, &guardErr) {
					t.Errorf("error = %v, want GuardError", err)
				}
				if ExitCode(err) != 1 {
					t.Errorf("ExitCode = %d, want 1", ExitCode(err))
				}
			}
		})
	}
}

// TestLoadWaitsForReady polls the drive after a data load
func TestLoadWaitsForReady(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{Stdout: "Storage Element 1:Full :VolumeTag=G03001TA"})
	fake.Respond("uname", shell.Result{Stdout: "FreeBSD\n"})
	fake.Respond("mt -f /dev/nst1 status", shell.Result{Stdout: "Current Driver State: at rest."})
	c := testController(testConfig(), fake)

	req := &Request{
		Command:       "load",
		ChangerDevice: "/dev/sg2",
		Slot:          1,
		DriveDevice:   "/dev/nst1",
		DriveIndex:    1,
	}
	_, vol, err := c.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("Dispatch(load) error = %v", err)
	}
	if vol != "G03001TA" {
		t.Errorf("resolved volume = %q, want G03001TA", vol)
	}
	if countCalls(fake, "mtx -f /dev/sg2 load 1 1") != 1 {
		t.Errorf("mtx load not issued: %v", fake.CallLines())
	}
	if countCalls(fake, "mt -f /dev/nst1 status") != 1 {
		t.Errorf("readiness poll should stop after the drive reports ready")
	}
}

// TestLoadReadinessTimeout bounds the poll at maxWait+1 attempts and fails
// with exit code 1
func TestLoadReadinessTimeout(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{Stdout: "Storage Element 1:Full :VolumeTag=G03001TA"})
	fake.Respond("uname", shell.Result{Stdout: "FreeBSD\n"})
	fake.Respond("mt -f /dev/nst1 status", shell.Result{Stdout: "not ready"})
	cfg := testConfig()
	c := testController(cfg, fake)

	req := &Request{
		Command:       "load",
		ChangerDevice: "/dev/sg2",
		Slot:          1,
		DriveDevice:   "/dev/nst1",
		DriveIndex:    1,
	}
	_, _, err := c.Dispatch(context.Background(), req)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want TimeoutError", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode(err))
	}
	if got, want := countCalls(fake, "mt -f /dev/nst1 status"), cfg.LoadWaitSeconds+1; got != want {
		t.Errorf("poll attempts = %d, want %d", got, want)
	}
}

// TestLoadFailurePropagatesExitCode carries the mtx exit code on a failed
// load
func TestLoadFailurePropagatesExitCode(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{Stdout: "Storage Element 1:Full :VolumeTag=G03001TA"})
	fake.Respond("mtx -f /dev/sg2 load", shell.Result{ExitCode: 2, Stderr: "source Element Address 1 is Empty\n"})
	c := testController(testConfig(), fake)

	req := &Request{
		Command:       "load",
		ChangerDevice: "/dev/sg2",
		Slot:          1,
		DriveDevice:   "/dev/nst1",
		DriveIndex:    1,
	}
	_, _, err := c.Dispatch(context.Background(), req)
	if ExitCode(err) != 2 {
		t.Fatalf("ExitCode = %d (err %v), want 2", ExitCode(err), err)
	}
	// A failed load must not start the readiness poll.
	if countCalls(fake, "mt -f") != 0 {
		t.Errorf("no mt calls expected after a failed load: %v", fake.CallLines())
	}
}

// TestUnloadFailurePropagatesExitCode guarantees nonzero propagation on a
// failed unload
func TestUnloadFailurePropagatesExitCode(t *testing.T) {
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{
		Stdout: "Data Transfer Element 0:Full (Storage Element 5 Loaded):VolumeTag = G03005TA",
	})
	fake.Respond("mtx -f /dev/sg2 unload", shell.Result{ExitCode: 4, Stderr: "drive door locked\n"})
	c := testController(testConfig(), fake)

	req := &Request{
		Command:       "unload",
		ChangerDevice: "/dev/sg2",
		Slot:          5,
		DriveDevice:   "/dev/nst0",
		DriveIndex:    0,
	}
	_, _, err := c.Dispatch(context.Background(), req)
	if ExitCode(err) != 4 {
		t.Fatalf("ExitCode = %d (err %v), want 4", ExitCode(err), err)
	}
	if !strings.Contains(err.Error(), "drive door locked") {
		t.Errorf("diagnostic %q should include the tool stderr", err.Error())
	}
}

// TestOfflineBeforeUnload sends the drive offline first and tolerates an
// offline failure
func TestOfflineBeforeUnload(t *testing.T) {
	cfg := testConfig()
	cfg.OfflineBeforeUnload = true
	fake := shell.NewFake()
	fake.Respond("mtx -f /dev/sg2 status", shell.Result{
		Stdout: "Data Transfer Element 0:Full (Storage Element 5 Loaded):VolumeTag = G03005TA",
	})
	fake.Respond("mt -f /dev/nst0 offline", shell.Result{ExitCode: 1, Stderr: "no tape loaded\n"})
	c := testController(cfg, fake)

	req := &Request{
		Command:       "unload",
		ChangerDevice: "/dev/sg2",
		Slot:          5,
		DriveDevice:   "/dev/nst0",
		DriveIndex:    0,
	}
	if _, _, err := c.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("Dispatch(unload) error = %v", err)
	}

	lines := fake.CallLines()
	offlineIdx, unloadIdx := -1, -1
	for i, line := range lines {
		if strings.HasPrefix(line, "mt -f /dev/nst0 offline") {
			offlineIdx = i
		}
		if strings.HasPrefix(line, "mtx -f /dev/sg2 unload") {
			unloadIdx = i
		}
	}
	if offlineIdx == -1 || unloadIdx == -1 || offlineIdx > unloadIdx {
		t.Errorf("calls = %v, want mt offline before mtx unload", lines)
	}
}

package store

import "time"

// Operation records one command invocation against the changer
type Operation struct {
	ID            int64
	Command       string
	ChangerDevice string
	Slot          int
	DriveDevice   string
	DriveIndex    int
	Volume        string
	JobID         string
	JobName       string
	Status        string // "success" or "failed"
	ExitCode      int
	Output        string
	StartTime     time.Time
	EndTime       time.Time
}

package changer

// Request is the validated command plus its positional arguments.
// Constructed once per invocation, read-only thereafter. For a transfer the
// storage daemon sends the destination slot in the drive-device position;
// DestinationSlot carries it already parsed.
type Request struct {
	ChangerDevice   string
	Command         string
	Slot            int
	DriveDevice     string
	DriveIndex      int
	DestinationSlot int
	JobID           string
	JobName         string
}

// OpContext distinguishes an operator-requested operation from a
// cleaning-internal sub-operation. Cleaning sub-operations never re-enter
// the cleaning orchestrator and skip the post-load readiness wait.
type OpContext struct {
	Cleaning bool
}

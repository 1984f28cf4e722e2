package main

import (
	"github.com/spf13/cobra"
)

func newLoadedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loaded <changer-device> <slot> <drive-device> <drive-index> [jobid] [jobname]",
		Short: "Show which slot is loaded in a drive",
		Long: `Print the source slot of the volume currently in the given drive, or 0
if the drive is empty.`,
		Example: `  tapechanger loaded /dev/sg2 0 /dev/nst0 0`,
		Args:    cobra.RangeArgs(4, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("loaded", args)
		},
	}
}

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "slots <changer-device> [slot] [drive-device] [drive-index] [jobid] [jobname]",
		Short:   "Show the number of storage slots in the library",
		Example: `  tapechanger slots /dev/sg2`,
		Args:    cobra.RangeArgs(1, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("slots", args)
		},
	}
}

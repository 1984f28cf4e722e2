package main

import (
	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <changer-device> <slot> <drive-device> <drive-index> [jobid] [jobname]",
		Short: "Load a volume from a slot into a drive",
		Long: `Load the volume in the given slot into the given drive, then poll the
drive until it reports ready or the configured load wait expires.`,
		Example: `  tapechanger load /dev/sg2 5 /dev/nst0 0`,
		Args:    cobra.RangeArgs(4, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("load", args)
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
)

func newUnloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unload <changer-device> <slot> <drive-device> <drive-index> [jobid] [jobname]",
		Short: "Unload a drive back to a slot",
		Long: `Unload the volume in the given drive back to the given slot. After a
successful unload the drive is checked for cleaning alerts; with auto_clean
enabled, a cleaning tape is loaded, run, and returned to its slot before
the command exits.`,
		Example: `  tapechanger unload /dev/sg2 5 /dev/nst0 0`,
		Args:    cobra.RangeArgs(4, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("unload", args)
		},
	}
}

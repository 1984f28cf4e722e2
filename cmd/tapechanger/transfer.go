package main

import (
	"github.com/spf13/cobra"
)

func newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <changer-device> <source-slot> <destination-slot> [drive-index] [jobid] [jobname]",
		Short: "Transfer a volume from one slot to another",
		Long: `Move a volume between two storage slots. The transfer is refused before
any hardware command is issued if the source slot is empty or the
destination slot is occupied; the changer's behavior in those cases is
undefined.

The storage daemon sends the destination slot in the drive-device argument
position.`,
		Example: `  tapechanger transfer /dev/sg2 3 7`,
		Args:    cobra.RangeArgs(3, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("transfer", args)
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <changer-device> [slot] [drive-device] [drive-index] [jobid] [jobname]",
		Short: "List occupied elements in slot:volume format",
		Long: `List every occupied slot in the library in the slot:volume format the
storage daemon expects. Volumes resident in a drive are reported under the
storage slot they were loaded from.`,
		Example: `  tapechanger list /dev/sg2`,
		Args:    cobra.RangeArgs(1, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("list", args)
		},
	}
}

func newListAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listall <changer-device> [slot] [drive-device] [drive-index] [jobid] [jobname]",
		Short: "List all elements in canonical token format",
		Long: `List every element in the library, empty or full, one token per line:

  Drives:         D:<drive-index>:F:<slot>:<volume> or D:<drive-index>:E
  Slots:          S:<slot>:F:<volume>               or S:<slot>:E
  Import/Export:  I:<slot>:F:<volume>               or I:<slot>:E`,
		Example: `  tapechanger listall /dev/sg2`,
		Args:    cobra.RangeArgs(1, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("listall", args)
		},
	}
}

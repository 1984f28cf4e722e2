package main

import (
	"fmt"
	"os"

	"github.com/revpol/tapechanger/internal/changer"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		// The storage daemon reads the diagnostic from stdout after
		// "Result=" in its job log.
		fmt.Println(err)
		os.Exit(changer.ExitCode(err))
	}
}

// main is the entrypoint for the rundiag CLI.
package main

import (
	"github.com/physqa/rundiag/cmd"
	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/internal/iohistory"
)

func main() {
	cmd.SetHistoryManager(iohistory.Manager)

	err := cmd.Execute()

	// Cleanup runs before the exit path so profiles and connections
	// are flushed even when a command failed.
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	iohistory.CloseHistory()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}

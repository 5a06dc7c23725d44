// Command adt validates, fingerprints and simulates container snapshots.
package main

import (
	"os"

	"github.com/roach88/adt/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}

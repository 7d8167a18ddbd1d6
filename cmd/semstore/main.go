// Command semstore merges and identifies resource batches against a
// semantic metadata store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/semstore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

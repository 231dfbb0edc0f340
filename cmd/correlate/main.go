// Command correlate runs the Correlation & Impact Engine over a
// drift-result set and a file list, and prints the resulting report
// as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/driftradius/correlator/cmd/correlate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command konditional is the operator CLI for a konditiond instance:
// validate snapshot files locally, load or patch them into a running
// server, evaluate a feature against an ad-hoc context, export the current
// snapshot, and roll a namespace back. Grounded on the reference CLI's own
// cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/konditional/konditional/cmd/konditional/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

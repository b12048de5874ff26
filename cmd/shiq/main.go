// Command shiq is a small front end over package kernel: a worked example
// of the Kernel API (§6) and a test harness for the tableau core, not a
// product surface in its own right (spec.md's Non-goals bind the core,
// not whether an example CLI exists — see SPEC_FULL.md §1).
package main

import (
	"os"

	"github.com/dtsarkov/shiq/cmd/shiq/cmd"
)

func main() {
	os.Exit(cmd.Main())
}

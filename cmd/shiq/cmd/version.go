package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print shiq version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "shiq version %s\n", moduleVersion())
			fmt.Fprintf(w, "go version %s\n", runtime.Version())
			return nil
		},
	}
}

// moduleVersion reports the shiq module's own build version the way
// cmd/cue's cueModuleVersion does, falling back to "(devel)" when none is
// embedded (a local `go run`, as opposed to a built/installed binary).
func moduleVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}

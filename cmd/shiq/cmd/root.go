// Package cmd builds the shiq command tree, grounded on cmd/cue's own
// New/Main/Command split (cue-lang-cue's cmd/cue/cmd/root.go): a thin
// *cobra.Command wrapper that silences cobra's own error/usage printing
// so errors can be rendered once, uniformly, through internal/rerrors.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dtsarkov/shiq/internal/rerrors"
	"github.com/dtsarkov/shiq/kernel"
)

// Command wraps the root *cobra.Command the way cmd/cue's Command does,
// giving subcommands a place to hang shared flags without a package-level
// global.
type Command struct {
	*cobra.Command

	cfgPath string
}

// New builds the shiq command tree: a root command plus one subcommand per
// file in this package.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:   "shiq",
		Short: "shiq drives a SHIQ(D) tableau reasoner kernel",
		Long: `shiq is a worked example and test harness over package kernel,
the Kernel API named in the reasoner's specification (§6). It is not a
description-logic front end: it has no OWL/Manchester-syntax parser, and
exists only to demonstrate and smoke-test the kernel's query surface.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c := &Command{Command: root}

	root.PersistentFlags().StringVar(&c.cfgPath, "config", "",
		"path to a YAML config file (§6 options: timeout, verboseOutput, useRelevantOnly, topBRole/botBRole/topDRole/botDRole)")

	root.AddCommand(
		newVersionCmd(c),
		newDemoCmd(c),
	)
	root.SetArgs(args)
	return c
}

// config loads c's configured Config, falling back to kernel.DefaultConfig
// when no --config flag was given.
func (c *Command) config() (kernel.Config, error) {
	if c.cfgPath == "" {
		return kernel.DefaultConfig(), nil
	}
	return kernel.LoadConfigFile(c.cfgPath)
}

// Main runs the shiq CLI and returns the process exit code, mirroring
// cmd/cue's Main: errors are printed exactly once, through
// internal/rerrors.Print, never by cobra itself.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Execute(); err != nil {
		rerrors.Print(os.Stderr, rerrors.Promote(err, "shiq"), nil)
		return 1
	}
	return 0
}

// background is the context every subcommand runs its kernel calls under:
// no ambient cancellation, matching §5's "no suspension points ... at rule
// granularity" outside the cooperative timeout Config.Timeout supplies.
func background() context.Context { return context.Background() }

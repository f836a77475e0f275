// Command iduplan is the CLI / orchestration layer: a thin collaborator
// around the plan compiler (package plan), the loop
// driver (package loop), and the renderer (package render). It has two
// roles: "compile" writes an ordered stage directory from a config file;
// "run" executes a compiled stage directory against a warehouse.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "iduplan",
		Short:        "Identity unification plan compiler and runner",
		SilenceUsage: true,
	}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newRunCmd())
	return root
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinysh/tinysh/core"
)

// builtinsCmd lists the shell's builtin commands
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the shell handles without spawning a process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range core.ListBuiltins() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}

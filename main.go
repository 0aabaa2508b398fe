package main

import (
	"os"

	"github.com/cottand/palletgen/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "palletgen [subcommand]",
	Short:        "palletgen\n turns runtime metadata snapshots into a plan of versioned type and module definitions",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.RefineCmd)
	rootCmd.AddCommand(cmd.UnifyCmd)
}

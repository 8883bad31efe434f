package main

import (
	"fmt"

	"github.com/philipparndt/gostep/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("gostep %s\n", info.Version)
		fmt.Printf("  commit: %s\n", info.GitCommit)
		fmt.Printf("  built:  %s\n", info.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

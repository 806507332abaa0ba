package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/toolhouse"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of toolhouse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "toolhouse version %s\n", strings.TrimSpace(toolhouse.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

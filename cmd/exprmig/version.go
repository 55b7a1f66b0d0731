package main

import (
	"strings"

	"github.com/aretw0/exprmig"
	"github.com/aretw0/exprmig/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of exprmig",
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(exprmig.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"github.com/aretw0/exprmig/internal/cli"
	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Manage saved backup sets",
	Long:  `List and remove the backup sets saved by committing sessions.`,
}

var backupsLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved backup sets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.ListBackups(cmd.Context(), cfg, cli.Deps{Out: cmd.OutOrStdout()})
	},
}

var backupsRmCmd = &cobra.Command{
	Use:     "rm <session-id>...",
	Aliases: []string{"delete"},
	Short:   "Remove one or more backup sets",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.DeleteBackups(cmd.Context(), cfg, args, cli.Deps{Out: cmd.OutOrStdout()})
	},
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	backupsCmd.AddCommand(backupsLsCmd)
	backupsCmd.AddCommand(backupsRmCmd)
}

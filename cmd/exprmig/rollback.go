package main

import (
	"errors"

	"github.com/aretw0/exprmig/internal/cli"
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback [session-id]",
	Short: "Restore the documents of a committed session",
	Long: `Replaces every document of a saved backup set with its pre-image. Use --file to restore
from a documents_backup.json artifact instead of the backup store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fromFile, _ := cmd.Flags().GetString("file")
		sessionID := ""
		if len(args) == 1 {
			sessionID = args[0]
		}
		if sessionID == "" && fromFile == "" {
			return errors.New("rollback needs a session ID or --file")
		}

		return cli.Rollback(cmd.Context(), cfg, sessionID, fromFile, cli.Deps{Out: cmd.OutOrStdout()})
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)

	rollbackCmd.Flags().String("file", "", "Restore from a documents_backup.json artifact")
}

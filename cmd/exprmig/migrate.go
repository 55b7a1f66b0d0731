package main

import (
	"github.com/aretw0/exprmig/internal/cli"
	"github.com/aretw0/exprmig/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Find and rewrite legacy expressions",
	Long: `Scans the collection for legacy expressions and writes the occurrence, expression,
document and backup artifacts. With --commit and a translation file, rewritten documents are
replaced in the database and their backup set is saved for rollback.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.Migrate(cmd.Context(), cfg, cli.Deps{Out: cmd.OutOrStdout()})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	defineMigrateFlags(migrateCmd.Flags())
}

func defineMigrateFlags(flags *pflag.FlagSet) {
	def := config.Default()

	flags.String("translation", "", "Translation file (JSON or YAML)")
	flags.Bool("commit", false, "Commit changes to database")
	flags.String("expressionlanguage", def.ExpressionLanguage, "How to handle expressionLanguage values. Can be: delete, ignore, jexl or jexlall")
	flags.String("statistics", def.Statistics, "Statistics grouping. Possible values: service subservice")
	flags.String("output-dir", def.OutputDir, "Directory of the session artifacts")

	flags.String("regexservice", def.ServiceRegex, "FIWARE service regex filter")
	flags.String("regexservicepath", def.SubserviceRegex, "FIWARE servicepath regex filter")
	flags.String("regexdeviceid", def.DeviceIDRegex, "Device ID regex filter")
	flags.String("regexentitytype", def.EntityTypeRegex, "Entity type regex filter")
	flags.String("service", "", "FIWARE service filter")
	flags.String("servicepath", "", "FIWARE servicepath filter")
	flags.String("deviceid", "", "Device ID filter")
	flags.String("entitytype", "", "Entity type filter")

	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")
}

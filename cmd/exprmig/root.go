package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/exprmig/internal/cli"
	"github.com/aretw0/exprmig/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "exprmig",
	Short: "exprmig migrates legacy IoT agent expressions",
	Long: `exprmig finds legacy "${...@...}" expressions in IoT agent device and group documents,
rewrites them with a translation table and keeps a backup of every document it changes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if sig := ctx.Signal(); sig != nil {
			fmt.Fprintf(os.Stderr, "interrupted by %s\n", sig)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	definePersistentFlags(rootCmd.PersistentFlags())
}

func definePersistentFlags(flags *pflag.FlagSet) {
	def := config.Default()

	flags.String("config", "", "YAML or JSON configuration file")
	flags.Bool("debug", false, "Debug mode")
	flags.String("database", "", "Database name")
	flags.String("collection", "", "Collection name")
	flags.String("mongouri", def.MongoURI, "Database connection URI")
	flags.String("backup-dir", def.Backup.Dir, "Directory of the file backup store")
	flags.Duration("backup-ttl", def.Backup.TTL, "Expiration of Redis backup sets (0 keeps them)")
	flags.String("backup-key", "", "Base64 AES-256 key sealing backup sets")
	flags.String("redis-addr", "", "Redis address; enables the Redis backup store and the run guard")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
}

// loadConfig reads the configuration file, then applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	str("database", &cfg.Database)
	str("collection", &cfg.Collection)
	str("mongouri", &cfg.MongoURI)
	str("translation", &cfg.Translation)
	boolean("debug", &cfg.Debug)
	boolean("commit", &cfg.Commit)
	str("expressionlanguage", &cfg.ExpressionLanguage)
	str("statistics", &cfg.Statistics)
	str("output-dir", &cfg.OutputDir)

	str("regexservice", &cfg.ServiceRegex)
	str("regexservicepath", &cfg.SubserviceRegex)
	str("regexdeviceid", &cfg.DeviceIDRegex)
	str("regexentitytype", &cfg.EntityTypeRegex)
	str("service", &cfg.Service)
	str("servicepath", &cfg.Subservice)
	str("deviceid", &cfg.DeviceID)
	str("entitytype", &cfg.EntityType)

	str("backup-dir", &cfg.Backup.Dir)
	if flags.Changed("backup-ttl") {
		cfg.Backup.TTL, _ = flags.GetDuration("backup-ttl")
	}
	str("backup-key", &cfg.Backup.EncryptionKey)
	str("redis-addr", &cfg.Redis.Addr)
	str("redis-password", &cfg.Redis.Password)
	if flags.Changed("redis-db") {
		cfg.Redis.DB, _ = flags.GetInt("redis-db")
	}
	str("metrics-addr", &cfg.Metrics.Addr)
	str("metrics-file", &cfg.Metrics.File)

	return cfg, nil
}

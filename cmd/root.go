package cmd

import (
	"fmt"
	"os"

	"Gin_postgres_redis_device_inventory/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile   string
	logLevel  string
	logFormat string

	cfg app.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "inventory",
	Short:         "Loaner device inventory (tablets, headphones, adapters, cases)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			cfg = app.LoadConfig(envFile)
		} else {
			cfg = app.LoadConfig()
		}
		// 命令行优先于环境变量
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		var err error
		log, err = app.NewLogger(cfg.LogLevel, cfg.LogFormat)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "json|console")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(bootstrapCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

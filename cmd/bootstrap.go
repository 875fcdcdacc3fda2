package cmd

import (
	"fmt"
	"strings"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/db"

	"github.com/spf13/cobra"
)

var bootstrapEmail string

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the first admin invite when no admin exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		if bootstrapEmail != "" {
			cfg.BootstrapEmail = strings.ToLower(strings.TrimSpace(bootstrapEmail))
		}
		if cfg.BootstrapEmail == "" {
			return fmt.Errorf("no email: pass --email or set BOOTSTRAP_EMAIL")
		}
		conn, err := db.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}

		link, err := app.BootstrapFirstAdmin(cmd.Context(), cfg, db.NewRepo(conn), log)
		if err != nil {
			return err
		}
		if link == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "an admin already exists, nothing to do")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().StringVar(&bootstrapEmail, "email", "", "email of the first admin (overrides BOOTSTRAP_EMAIL)")
}

package cmd

import (
	"Gin_postgres_redis_device_inventory/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}
		log.Info("schema up to date")
		return nil
	},
}

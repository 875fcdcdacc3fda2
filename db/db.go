package db

import (
	"fmt"

	"Gin_postgres_redis_device_inventory/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB 打开 Postgres 并执行迁移
func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Credential{},
		&models.Invite{},
		&models.Lendee{},
		&models.Device{},
		&models.DeviceEvent{},
	); err != nil {
		return err
	}

	// 按借用人查当前借出的设备
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_checked_out_by_lendee
	  ON %s (lendee_id)
	  WHERE status = '%s' AND deleted_at IS NULL;
	`, models.DeviceTable, models.DeviceTable, models.StatusCheckedOut)).Error; err != nil {
		return err
	}

	// 单台设备的历史按时间倒序
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_device_created_desc
	  ON %s (device_id, created_at DESC);
	`, models.DeviceEventTable, models.DeviceEventTable)).Error; err != nil {
		return err
	}

	return nil
}

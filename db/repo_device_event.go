package db

import (
	"context"
	"fmt"

	"Gin_postgres_redis_device_inventory/models"

	"gorm.io/gorm"
)

func logDeviceEvent(tx *gorm.DB, d *models.Device, action models.EventAction, actorID string) error {
	ev := models.NewDeviceEvent(d, action, actorID)
	if err := tx.Create(ev).Error; err != nil {
		return fmt.Errorf("insert device event: %w", err)
	}
	return nil
}

// ListDeviceEvents 单台设备的历史，最新在前
func (r *Repo) ListDeviceEvents(ctx context.Context, deviceID string, limit int) ([]models.DeviceEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var evs []models.DeviceEvent
	if err := r.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&evs).Error; err != nil {
		return nil, err
	}
	return evs, nil
}

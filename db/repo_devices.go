package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"Gin_postgres_redis_device_inventory/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateDevice 新建设备；名称/状态为空时由 BeforeSave 补默认值
func (r *Repo) CreateDevice(ctx context.Context, d *models.Device, actorID string) error {
	if !d.Kind.Valid() {
		return ErrUnknownKind
	}
	p := d.Profile()
	if d.Status != "" && !p.Allows(d.Status) {
		return ErrStatusNotAllowed
	}
	// 新建时没有借出人/借用人，不能直接是借出状态
	if d.Status == models.StatusCheckedOut {
		return ErrCheckOutOnly
	}
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
	if p.SerialRequired && d.SerialNumber == "" {
		return ErrSerialRequired
	}
	st := d.Status
	if st == "" {
		st = p.DefaultStatus
	}
	if !models.ConditionMatchesStatus(d.Condition, st) {
		return ErrConditionMismatch
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		return logDeviceEvent(tx, d, models.EventCreated, actorID)
	})
}

func (r *Repo) FindDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	return findDevice(r.DB.WithContext(ctx), id)
}

func findDevice(tx *gorm.DB, id string) (*models.Device, error) {
	var d models.Device
	if err := tx.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &d, nil
}

// DevicePatch 管理员直接编辑；nil 表示不改
type DevicePatch struct {
	Name             *string
	Description      *string
	ResponsibleParty *string
	Make             *string
	SerialNumber     *string
	Status           *models.Status
	Condition        *models.Condition
	PurchasedAt      *time.Time
}

func (p DevicePatch) apply(d *models.Device) {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.ResponsibleParty != nil {
		d.ResponsibleParty = *p.ResponsibleParty
	}
	if p.Make != nil {
		d.Make = *p.Make
	}
	if p.SerialNumber != nil {
		d.SerialNumber = strings.TrimSpace(*p.SerialNumber)
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Condition != nil {
		d.Condition = *p.Condition
	}
	if p.PurchasedAt != nil {
		d.PurchasedAt = *p.PurchasedAt
	}
}

func (r *Repo) UpdateDevice(ctx context.Context, id string, patch DevicePatch, actorID string) (*models.Device, error) {
	var d *models.Device
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if d, err = findDevice(tx, id); err != nil {
			return err
		}
		wasOut := d.Status == models.StatusCheckedOut
		patch.apply(d)

		p := d.Profile()
		if !p.Allows(d.Status) {
			return ErrStatusNotAllowed
		}
		switch {
		case !wasOut && d.Status == models.StatusCheckedOut:
			return ErrCheckOutOnly
		case wasOut && d.Status != models.StatusCheckedOut:
			// 改成其他状态即视为收回
			d.LenderID = nil
			d.LendeeID = nil
		}
		if p.SerialRequired && d.SerialNumber == "" {
			return ErrSerialRequired
		}
		if !models.ConditionMatchesStatus(d.Condition, d.Status) {
			return ErrConditionMismatch
		}
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		return logDeviceEvent(tx, d, models.EventUpdated, actorID)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDevice 软删除，历史记录保留
func (r *Repo) DeleteDevice(ctx context.Context, id, actorID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := findDevice(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(d).Error; err != nil {
			return err
		}
		return logDeviceEvent(tx, d, models.EventDeleted, actorID)
	})
}

// CheckOutDevice 借出：没有行锁，也不拦重复借出，后写覆盖
func (r *Repo) CheckOutDevice(ctx context.Context, id, lenderID, lendeeID string) (*models.Device, error) {
	var d *models.Device
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if d, err = findDevice(tx, id); err != nil {
			return err
		}
		if _, err := findLendee(tx, lendeeID); err != nil {
			return err
		}
		d.CheckOut(lenderID, lendeeID)
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		return logDeviceEvent(tx, d, models.EventCheckedOut, lenderID)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CheckInDevice 归还：按成色改状态，清空借出人/借用人
func (r *Repo) CheckInDevice(ctx context.Context, id string, c models.Condition, actorID string) (*models.Device, error) {
	var d *models.Device
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if d, err = findDevice(tx, id); err != nil {
			return err
		}
		d.CheckIn(c)
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		return logDeviceEvent(tx, d, models.EventCheckedIn, actorID)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// models/device.go
package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const DeviceTable = "inv_devices"

const (
	ColorRed   = "red"
	ColorGreen = "green"
	ColorAmber = "#ffcc00"
)

// Device 一条记录对应一台实物设备，Kind 区分子类型
type Device struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	Kind             Kind      `gorm:"size:20;index;not null" json:"kind"`
	Name             string    `gorm:"size:50;not null" json:"name"`
	Description      string    `gorm:"size:1000" json:"description,omitempty"`
	ResponsibleParty string    `gorm:"size:100" json:"responsibleParty,omitempty"`
	Make             string    `gorm:"size:200;not null" json:"make"`
	SerialNumber     string    `gorm:"size:200;index" json:"serialNumber,omitempty"` // 平板必填
	Status           Status    `gorm:"size:2;index;not null" json:"status"`
	Condition        Condition `gorm:"size:2;not null;default:'EX'" json:"condition"`

	// 借出时两者同时有值，归还时同时清空
	LendeeID *string `gorm:"type:uuid;index" json:"lendeeId,omitempty"`
	LenderID *string `gorm:"type:uuid;index" json:"lenderId,omitempty"`

	PurchasedAt time.Time      `json:"purchasedAt"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"index" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Device) TableName() string { return DeviceTable }

func (d *Device) String() string {
	return fmt.Sprintf("name: %s, status: %s", d.Name, d.Status)
}

func (d *Device) Profile() KindProfile { return d.Kind.Profile() }

// BeforeSave 补默认名称/状态/成色
func (d *Device) BeforeSave(tx *gorm.DB) error {
	p := d.Profile()
	if d.Name == "" {
		d.Name = p.DefaultName
	}
	if d.Status == "" {
		d.Status = p.DefaultStatus
	}
	if d.Condition == "" {
		d.Condition = ConditionExcellent
	}
	if d.PurchasedAt.IsZero() {
		d.PurchasedAt = time.Now().UTC()
	}
	return nil
}

// CheckOut 借出：不检查是否已借出，后写覆盖
func (d *Device) CheckOut(lenderID, lendeeID string) {
	d.LenderID = &lenderID
	d.LendeeID = &lendeeID
	d.Status = StatusCheckedOut
}

// CheckIn 归还并按成色决定状态。
// 未识别的成色走 excellent 分支。
func (d *Device) CheckIn(c Condition) {
	p := d.Profile()
	switch c {
	case ConditionBroken:
		d.Status = StatusBroken
		d.Condition = ConditionBroken
	case ConditionScratched:
		d.Status = p.CheckInStatus
		d.Condition = ConditionScratched
	case ConditionMissing:
		d.Status = StatusMissing
		d.Condition = ConditionMissing
	default:
		d.Status = p.CheckInStatus
		d.Condition = ConditionExcellent
	}
	d.LendeeID = nil
	d.LenderID = nil
}

// ConditionMatchesStatus broken/missing 成色只能配对应状态
func ConditionMatchesStatus(c Condition, s Status) bool {
	switch c {
	case ConditionBroken:
		return s == StatusBroken
	case ConditionMissing:
		return s == StatusMissing
	}
	return true
}

func (d *Device) IsCheckedOut() bool {
	return d.Status == StatusCheckedOut && d.LenderID != nil && d.LendeeID != nil
}

// VerboseStatus 借出时带上借用人，其余返回状态文本
func (d *Device) VerboseStatus(lendee *Lendee) string {
	if d.Status != StatusCheckedOut {
		return d.Status.Label()
	}
	if lendee != nil {
		if name := lendee.FullName(); name != "" {
			return "Checked out to " + name
		}
		if lendee.SubjectID != nil && *lendee.SubjectID != "" {
			return "Checked out to Subject " + *lendee.SubjectID
		}
	}
	return d.Status.Label()
}

// StatusColor 列表着色
func (d *Device) StatusColor() string {
	switch d.Status {
	case StatusCheckedInNotReady, StatusBroken:
		return ColorRed
	case StatusCheckedInReady, StatusCheckedIn:
		return ColorGreen
	case StatusCheckedOut:
		return ColorAmber
	}
	return ""
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const DeviceEventTable = "inv_device_events"

type EventAction string

const (
	EventCreated    EventAction = "created"
	EventUpdated    EventAction = "updated"
	EventCheckedOut EventAction = "checked_out"
	EventCheckedIn  EventAction = "checked_in"
	EventDeleted    EventAction = "deleted"
)

// DeviceEvent 每次变更留一条，带整条设备的快照，作为版本历史
type DeviceEvent struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID  string      `gorm:"type:uuid;index;not null" json:"deviceId"`
	Action    EventAction `gorm:"size:20;not null" json:"action"`
	Status    Status      `gorm:"size:2" json:"status"`
	Condition Condition   `gorm:"size:2" json:"condition"`
	LenderID  *string     `gorm:"type:uuid" json:"lenderId,omitempty"`
	LendeeID  *string     `gorm:"type:uuid" json:"lendeeId,omitempty"`
	ActorID   *string     `gorm:"type:uuid" json:"actorId,omitempty"`
	Snapshot  string      `gorm:"type:text" json:"snapshot"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`
}

func (DeviceEvent) TableName() string { return DeviceEventTable }

func NewDeviceEvent(d *Device, action EventAction, actorID string) *DeviceEvent {
	snap, _ := json.Marshal(d)
	ev := &DeviceEvent{
		ID:        uuid.NewString(),
		DeviceID:  d.ID,
		Action:    action,
		Status:    d.Status,
		Condition: d.Condition,
		LenderID:  d.LenderID,
		LendeeID:  d.LendeeID,
		Snapshot:  string(snap),
	}
	if actorID != "" {
		ev.ActorID = &actorID
	}
	return ev
}

package db

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrDeviceNotFound    = errors.New("device not found")
	ErrLendeeNotFound    = errors.New("lendee not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUnknownKind       = errors.New("unknown device kind")
	ErrStatusNotAllowed  = errors.New("status not allowed for this device kind")
	ErrSerialRequired    = errors.New("serial number is required for this device kind")
	ErrCheckOutOnly      = errors.New("checked out status is only set by check-out")
	ErrConditionMismatch = errors.New("broken or missing condition requires the matching status")
	ErrInviteUsed        = errors.New("invite already used or not found")
)

// IsNotFound 判断 repo 层的各种“不存在”
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound) ||
		errors.Is(err, ErrLendeeNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

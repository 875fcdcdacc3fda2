package models

import (
	"fmt"
	"strings"
)

// Role 员工类型
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleExperimenter Role = "experimenter"
	RoleReader       Role = "reader"
)

type Permission string

const (
	PermChangeDeviceStatus     Permission = "can_change_device_status"
	PermUpdateDeviceAttributes Permission = "can_update_device_attributes"
	PermManageUsers            Permission = "can_manage_users"
)

var rolePerms = map[Role][]Permission{
	RoleAdmin:        {PermChangeDeviceStatus, PermUpdateDeviceAttributes, PermManageUsers},
	RoleExperimenter: {PermChangeDeviceStatus},
	RoleReader:       nil,
}

func (r Role) Can(p Permission) bool {
	for _, rp := range rolePerms[r] {
		if rp == p {
			return true
		}
	}
	return false
}

func (r Role) Permissions() []Permission { return rolePerms[r] }

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rolePerms[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

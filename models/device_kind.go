// models/device_kind.go
package models

import (
	"fmt"
	"strings"
)

// Status 设备可用状态（两位代码直接入库）
type Status string

const (
	StatusCheckedIn         Status = "CI"
	StatusCheckedInReady    Status = "IR"
	StatusCheckedInNotReady Status = "IN"
	StatusCheckedOut        Status = "CO"
	StatusStorage           Status = "ST"
	StatusBroken            Status = "BR"
	StatusMissing           Status = "MI"
	StatusSentForRepair     Status = "RE"
)

var statusLabels = map[Status]string{
	StatusCheckedIn:         "Checked in",
	StatusCheckedInReady:    "Checked in - READY",
	StatusCheckedInNotReady: "Checked in - NOT READY",
	StatusCheckedOut:        "Checked out",
	StatusStorage:           "Storage",
	StatusBroken:            "Broken",
	StatusMissing:           "Missing",
	StatusSentForRepair:     "Sent for repair",
}

// Label 返回状态的显示文本；未知代码原样返回
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStatus 只接受两位代码（大小写不敏感）
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statusLabels[st]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Condition 设备外观/物理状况，和 Status 相互独立
type Condition string

const (
	ConditionExcellent Condition = "EX"
	ConditionScratched Condition = "SC"
	ConditionBroken    Condition = "BR"
	ConditionMissing   Condition = "MI"
)

var conditionLabels = map[Condition]string{
	ConditionExcellent: "Excellent",
	ConditionScratched: "Scratched",
	ConditionBroken:    "Broken",
	ConditionMissing:   "Missing",
}

var conditionNames = map[string]Condition{
	"excellent": ConditionExcellent,
	"scratched": ConditionScratched,
	"broken":    ConditionBroken,
	"missing":   ConditionMissing,
}

func (c Condition) Label() string {
	if l, ok := conditionLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCondition 接受 excellent/scratched/broken/missing 或对应代码，其余一律报错
func ParseCondition(s string) (Condition, error) {
	v := strings.TrimSpace(s)
	if c, ok := conditionNames[strings.ToLower(v)]; ok {
		return c, nil
	}
	c := Condition(strings.ToUpper(v))
	if _, ok := conditionLabels[c]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown condition %q", s)
}

// Kind 设备子类型判别字段
type Kind string

const (
	KindTablet     Kind = "tablet"
	KindHeadphones Kind = "headphones"
	KindAdapter    Kind = "adapter"
	KindCase       Kind = "case"
)

// KindProfile 子类型之间只在这些地方不同
type KindProfile struct {
	Kind           Kind     `json:"kind"`
	DefaultName    string   `json:"defaultName"`
	Plural         string   `json:"plural"`
	Singular       string   `json:"singular"`
	Statuses       []Status `json:"statuses"`
	DefaultStatus  Status   `json:"defaultStatus"`
	CheckInStatus  Status   `json:"checkInStatus"`
	SerialRequired bool     `json:"serialRequired"`
}

// 非平板共用的状态集合
var genericStatuses = []Status{
	StatusCheckedIn,
	StatusCheckedOut,
	StatusStorage,
	StatusBroken,
	StatusMissing,
	StatusSentForRepair,
}

var kindOrder = []Kind{KindTablet, KindHeadphones, KindAdapter, KindCase}

var profiles = map[Kind]KindProfile{
	KindTablet: {
		Kind:        KindTablet,
		DefaultName: "iPad",
		Plural:      "ipads",
		Singular:    "ipad",
		Statuses: []Status{
			StatusCheckedInReady,
			StatusCheckedInNotReady,
			StatusCheckedOut,
			StatusStorage,
			StatusBroken,
			StatusMissing,
			StatusSentForRepair,
		},
		DefaultStatus:  StatusCheckedInNotReady,
		CheckInStatus:  StatusCheckedInNotReady,
		SerialRequired: true,
	},
	KindHeadphones: {
		Kind:          KindHeadphones,
		DefaultName:   "Headphones",
		Plural:        "headphones",
		Singular:      "headphones",
		Statuses:      genericStatuses,
		DefaultStatus: StatusCheckedIn,
		CheckInStatus: StatusCheckedIn,
	},
	KindAdapter: {
		Kind:          KindAdapter,
		DefaultName:   "Power adapter",
		Plural:        "adapters",
		Singular:      "adapter",
		Statuses:      genericStatuses,
		DefaultStatus: StatusCheckedIn,
		CheckInStatus: StatusCheckedIn,
	},
	KindCase: {
		Kind:          KindCase,
		DefaultName:   "Case",
		Plural:        "cases",
		Singular:      "case",
		Statuses:      genericStatuses,
		DefaultStatus: StatusCheckedIn,
		CheckInStatus: StatusCheckedIn,
	},
}

// 未登记的 kind 按非平板处理
var fallbackProfile = KindProfile{
	Statuses:      genericStatuses,
	DefaultStatus: StatusCheckedIn,
	CheckInStatus: StatusCheckedIn,
}

// Profile 查表；未知 kind 返回通用规则
func (k Kind) Profile() KindProfile {
	if p, ok := profiles[k]; ok {
		return p
	}
	p := fallbackProfile
	p.Kind = k
	return p
}

func (k Kind) Valid() bool {
	_, ok := profiles[k]
	return ok
}

// CName 复数/单数名称，用于列表标题和路由
func (k Kind) CName(plural bool) string {
	p := k.Profile()
	if plural {
		return p.Plural
	}
	return p.Singular
}

// Allows 该子类型是否允许这个状态
func (p KindProfile) Allows(s Status) bool {
	for _, st := range p.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// ParseKind 同时接受 kind 本身和复数/单数名称（如 "ipads"）
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, k := range kindOrder {
		p := profiles[k]
		if v == string(k) || v == p.Plural || v == p.Singular {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown device kind %q", s)
}

// Profiles 按固定顺序返回全部子类型
func Profiles() []KindProfile {
	out := make([]KindProfile, 0, len(kindOrder))
	for _, k := range kindOrder {
		out = append(out, profiles[k])
	}
	return out
}

// db/repo_devices_list.go
package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_device_inventory/models"

	"gorm.io/gorm"
)

// DeviceRow 列表/详情统一视图：设备 + 当前借出人/借用人
type DeviceRow struct {
	// Device fields
	ID               string           `json:"id"`
	Kind             models.Kind      `json:"kind"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	ResponsibleParty string           `json:"responsibleParty,omitempty"`
	Make             string           `json:"make"`
	SerialNumber     string           `json:"serialNumber,omitempty"`
	Status           models.Status    `json:"status"`
	Condition        models.Condition `json:"condition"`
	PurchasedAt      time.Time        `json:"purchasedAt"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`

	// Current holder (nullable)
	LenderID        *string `json:"lenderId,omitempty"`
	LenderUsername  *string `json:"lenderUsername,omitempty"`
	LenderFirstName *string `json:"-"`
	LenderLastName  *string `json:"-"`
	LendeeID        *string `json:"lendeeId,omitempty"`
	LendeeFirstName *string `json:"-"`
	LendeeLastName  *string `json:"-"`
	LendeeSubjectID *string `json:"lendeeSubjectId,omitempty"`

	// Go 侧计算
	LenderName     string `gorm:"-" json:"lenderName,omitempty"`
	LendeeName     string `gorm:"-" json:"lendeeName,omitempty"`
	StatusLabel    string `gorm:"-" json:"statusLabel"`
	VerboseStatus  string `gorm:"-" json:"verboseStatus"`
	StatusColor    string `gorm:"-" json:"statusColor,omitempty"`
	ConditionLabel string `gorm:"-" json:"conditionLabel"`
}

type DevicesQuery struct {
	Kind   models.Kind   // "" 表示全部
	Status models.Status // "" 表示全部
	Q      string        // 模糊搜索：name/make/serial
	Page   int
	Size   int
}

type PagedDevices struct {
	Total int64       `json:"total"`
	Items []DeviceRow `json:"items"`
}

const deviceRowSelect = `
	d.id, d.kind, d.name, d.description, d.responsible_party, d.make, d.serial_number,
	d.status, d.condition, d.purchased_at, d.created_at, d.updated_at,
	d.lender_id, d.lendee_id,
	u.username   AS lender_username,
	u.first_name AS lender_first_name,
	u.last_name  AS lender_last_name,
	l.first_name AS lendee_first_name,
	l.last_name  AS lendee_last_name,
	l.subject_id AS lendee_subject_id
`

func deviceRowQuery(db *gorm.DB) *gorm.DB {
	return db.
		Table(models.DeviceTable+" d").
		Select(deviceRowSelect).
		Joins("LEFT JOIN "+models.UserTable+" u ON u.id = d.lender_id").
		Joins("LEFT JOIN "+models.LendeeTable+" l ON l.id = d.lendee_id").
		Where("d.deleted_at IS NULL")
}

func applyDeviceFilters(tx *gorm.DB, q DevicesQuery) *gorm.DB {
	if q.Kind != "" {
		tx = tx.Where("d.kind = ?", q.Kind)
	}
	if q.Status != "" {
		tx = tx.Where("d.status = ?", q.Status)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(d.name) LIKE ? OR LOWER(d.make) LIKE ? OR LOWER(d.serial_number) LIKE ?", pat, pat, pat)
	}
	return tx
}

func (r *Repo) ListDevices(ctx context.Context, q DevicesQuery) (*PagedDevices, error) {
	q.Page, q.Size = normalizePage(q.Page, q.Size, 200)
	db := r.DB.WithContext(ctx)

	var total int64
	if err := applyDeviceFilters(
		db.Table(models.DeviceTable+" d").Where("d.deleted_at IS NULL"), q,
	).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []DeviceRow
	if err := applyDeviceFilters(deviceRowQuery(db), q).
		Order("d.updated_at DESC, d.created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].fill()
	}
	return &PagedDevices{Total: total, Items: rows}, nil
}

func (r *Repo) FindDeviceRow(ctx context.Context, id string) (*DeviceRow, error) {
	var rows []DeviceRow
	if err := deviceRowQuery(r.DB.WithContext(ctx)).
		Where("d.id = ?", id).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrDeviceNotFound
	}
	rows[0].fill()
	return &rows[0], nil
}

// 复用 models 的显示逻辑
func (row *DeviceRow) fill() {
	d := models.Device{Kind: row.Kind, Status: row.Status, LenderID: row.LenderID, LendeeID: row.LendeeID}

	var lendee *models.Lendee
	if row.LendeeID != nil {
		lendee = &models.Lendee{
			FirstName: deref(row.LendeeFirstName),
			LastName:  deref(row.LendeeLastName),
			SubjectID: row.LendeeSubjectID,
		}
		row.LendeeName = lendee.FullName()
		if row.LendeeName == "" && row.LendeeSubjectID != nil {
			row.LendeeName = "Subject " + *row.LendeeSubjectID
		}
	}
	if row.LenderID != nil {
		u := models.User{
			Username:    deref(row.LenderUsername),
			FirstName:   deref(row.LenderFirstName),
			LastName:    deref(row.LenderLastName),
			DisplayName: deref(row.LenderUsername),
		}
		row.LenderName = u.FullName()
	}

	row.StatusLabel = row.Status.Label()
	row.VerboseStatus = d.VerboseStatus(lendee)
	row.StatusColor = d.StatusColor()
	row.ConditionLabel = row.Condition.Label()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package db

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_device_inventory/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repo) CreateLendee(ctx context.Context, l *models.Lendee) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	// 空编号存 NULL，唯一索引才不冲突
	if l.SubjectID != nil {
		if sid := strings.TrimSpace(*l.SubjectID); sid == "" {
			l.SubjectID = nil
		} else {
			l.SubjectID = &sid
		}
	}
	return r.DB.WithContext(ctx).Create(l).Error
}

func (r *Repo) FindLendeeByID(ctx context.Context, id string) (*models.Lendee, error) {
	return findLendee(r.DB.WithContext(ctx), id)
}

func findLendee(tx *gorm.DB, id string) (*models.Lendee, error) {
	var l models.Lendee
	if err := tx.First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLendeeNotFound
		}
		return nil, err
	}
	return &l, nil
}

type PagedLendees struct {
	Total   int64           `json:"total"`
	Lendees []models.Lendee `json:"lendees"`
}

// ListLendees 关键词匹配姓名/邮箱/受试者编号
func (r *Repo) ListLendees(ctx context.Context, q string, page, size int) (*PagedLendees, error) {
	page, size = normalizePage(page, size, 100)

	tx := r.DB.WithContext(ctx).Model(&models.Lendee{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject_id) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	var ls []models.Lendee
	if err := tx.Order("last_name, first_name, subject_id").
		Offset((page - 1) * size).
		Limit(size).
		Find(&ls).Error; err != nil {
		return nil, err
	}
	return &PagedLendees{Total: total, Lendees: ls}, nil
}

package models

import (
	"strings"
	"time"
)

const LendeeTable = "inv_lendees"

// Lendee 借用人：真人（姓名/邮箱）或只登记编号的受试者
type Lendee struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName string    `gorm:"size:100" json:"firstName,omitempty"`
	LastName  string    `gorm:"size:100" json:"lastName,omitempty"`
	Email     string    `gorm:"size:255;index" json:"email,omitempty"`
	SubjectID *string   `gorm:"size:64;uniqueIndex" json:"subjectId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Lendee) TableName() string { return LendeeTable }

func (l *Lendee) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

func (l *Lendee) IsSubject() bool {
	return l.FullName() == "" && l.SubjectID != nil
}

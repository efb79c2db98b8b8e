package model

import (
	"time"

	"gorm.io/gorm"
)

// Plan is a tenant's billing tier. It gates the note quota.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// NoteLimit returns the maximum number of notes the plan permits.
// A negative value means unbounded.
func (p Plan) NoteLimit() int {
	if p == PlanPro {
		return -1
	}
	return 3
}

// Tenant represents the tenant model stored in the database
// This is the core of our multi-tenant architecture. The slug is the
// public, immutable identifier used for external addressing; the plan is
// mutable only through the upgrade operation (free -> pro).
type Tenant struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string         `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Plan      Plan           `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry is one logged unit of billable work on a project.
type TimeEntry struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProjectID uint     `gorm:"not null;index:idx_time_entries_project_date,priority:1" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"-"`

	Date time.Time `gorm:"type:date;not null;index;index:idx_time_entries_project_date,priority:2" json:"date"`
	// Tenth-of-an-hour granularity, always positive.
	DurationHours decimal.Decimal `gorm:"type:numeric(5,1);not null" json:"duration_hours"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`

	Status    TimeEntryStatus `gorm:"size:16;not null;default:'draft';index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

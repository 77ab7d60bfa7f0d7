package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project groups the time entries billed to one client.
type Project struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ClientID    uint    `gorm:"not null;index" json:"client_id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Client      *Client `gorm:"foreignKey:ClientID" json:"-"`

	// HourlyRate nil means "bill at the profile default rate".
	HourlyRate *decimal.Decimal `gorm:"type:numeric(10,2)" json:"hourly_rate"`
	// Currency is a display label only; no conversion happens anywhere.
	Currency string `gorm:"size:3;not null;default:'RUB'" json:"currency"`

	Status    ProjectStatus `gorm:"size:16;not null;default:'active';index" json:"status"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`

	TimeEntries []TimeEntry `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

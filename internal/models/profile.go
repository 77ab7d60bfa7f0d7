package models

import (
	"github.com/shopspring/decimal"
)

// ProfileKey is the fixed key of the single practitioner profile row.
// The profile is a configuration entity, not a language-level singleton:
// every use site looks it up by this key and handles absence explicitly.
const ProfileKey = "default"

// LawyerProfile holds the issuer identity, bank details and billing
// defaults of the practice. At most one row exists per installation.
type LawyerProfile struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProfileKey string `gorm:"uniqueIndex;size:32;not null;default:'default'" json:"-"`

	FullName    string `gorm:"size:255;not null" json:"full_name"`
	CompanyName string `gorm:"size:255;not null" json:"company_name"`
	INN         string `gorm:"size:12;not null" json:"inn"`
	Address     string `gorm:"type:text;not null" json:"address"`

	BankName             string `gorm:"size:255;not null" json:"bank_name"`
	BIK                  string `gorm:"size:9;not null" json:"bik"`
	CheckingAccount      string `gorm:"size:20;not null" json:"checking_account"`
	CorrespondentAccount string `gorm:"size:20;not null" json:"correspondent_account"`

	Email string `gorm:"size:255;not null" json:"email"`
	Phone string `gorm:"size:20;not null" json:"phone"`

	// Fallback hourly rate for projects without their own rate.
	DefaultHourlyRate decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"default_hourly_rate"`
	LogoPath          string          `gorm:"size:500" json:"logo_path,omitempty"`
}

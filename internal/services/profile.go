package services

import (
	"errors"

	"github.com/akazmin/lawbill/internal/models"
	"github.com/akazmin/lawbill/internal/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProfileService manages the single practitioner profile row. There is no
// delete: once configured, the profile only ever gets partial updates.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService { return &ProfileService{DB: db} }

type ProfileInput struct {
	FullName             *string          `json:"full_name"`
	CompanyName          *string          `json:"company_name"`
	INN                  *string          `json:"inn"`
	Address              *string          `json:"address"`
	BankName             *string          `json:"bank_name"`
	BIK                  *string          `json:"bik"`
	CheckingAccount      *string          `json:"checking_account"`
	CorrespondentAccount *string          `json:"correspondent_account"`
	Email                *string          `json:"email"`
	Phone                *string          `json:"phone"`
	DefaultHourlyRate    *decimal.Decimal `json:"default_hourly_rate"`
	LogoPath             *string          `json:"logo_path"`
}

// Get returns the profile or NotFoundError when it was never created.
func (s *ProfileService) Get() (*models.LawyerProfile, error) {
	var profile models.LawyerProfile
	err := s.DB.Where("profile_key = ?", models.ProfileKey).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "profile"}
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates the profile on first call (all required fields must be
// present) and applies a partial update afterwards.
func (s *ProfileService) Upsert(in ProfileInput) (*models.LawyerProfile, error) {
	var profile models.LawyerProfile
	err := s.DB.Where("profile_key = ?", models.ProfileKey).First(&profile).Error
	creating := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !creating {
		return nil, err
	}

	if creating {
		v := validation.Violations{}
		requireString(v, "full_name", in.FullName)
		requireString(v, "company_name", in.CompanyName)
		requireString(v, "inn", in.INN)
		requireString(v, "address", in.Address)
		requireString(v, "bank_name", in.BankName)
		requireString(v, "bik", in.BIK)
		requireString(v, "checking_account", in.CheckingAccount)
		requireString(v, "correspondent_account", in.CorrespondentAccount)
		requireString(v, "email", in.Email)
		requireString(v, "phone", in.Phone)
		if in.DefaultHourlyRate == nil {
			v["default_hourly_rate"] = "required"
		}
		if !v.Empty() {
			return nil, &ValidationError{Violations: v}
		}
		profile = models.LawyerProfile{ProfileKey: models.ProfileKey}
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&profile.FullName, in.FullName)
	apply(&profile.CompanyName, in.CompanyName)
	apply(&profile.INN, in.INN)
	apply(&profile.Address, in.Address)
	apply(&profile.BankName, in.BankName)
	apply(&profile.BIK, in.BIK)
	apply(&profile.CheckingAccount, in.CheckingAccount)
	apply(&profile.CorrespondentAccount, in.CorrespondentAccount)
	apply(&profile.Email, in.Email)
	apply(&profile.Phone, in.Phone)
	apply(&profile.LogoPath, in.LogoPath)
	if in.DefaultHourlyRate != nil {
		if in.DefaultHourlyRate.IsNegative() {
			return nil, invalidField("default_hourly_rate", "must_be_non_negative")
		}
		profile.DefaultHourlyRate = *in.DefaultHourlyRate
	}

	if err := s.DB.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func requireString(v validation.Violations, field string, val *string) {
	if val == nil {
		v[field] = "required"
		return
	}
	validation.Required(field, *val, v)
}

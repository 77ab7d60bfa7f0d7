package services

import (
	"errors"

	"github.com/akazmin/lawbill/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResolveRate returns the hourly rate applicable to the project's time
// entries: the project's own rate when set, otherwise the profile default.
// Pure read; estimates always reflect the currently configured rate, while
// invoice items keep the value captured at creation.
func ResolveRate(db *gorm.DB, project *models.Project) (decimal.Decimal, error) {
	if project.HourlyRate != nil {
		return *project.HourlyRate, nil
	}
	var profile models.LawyerProfile
	err := db.Where("profile_key = ?", models.ProfileKey).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, &ConfigurationError{Msg: "billing_not_configured"}
	}
	if err != nil {
		return decimal.Zero, err
	}
	return profile.DefaultHourlyRate, nil
}

// defaultRateOrZero is the degraded form used by read-only aggregation:
// reports never fail on an unconfigured profile, they price fallback
// entries at zero instead.
func defaultRateOrZero(db *gorm.DB) (decimal.Decimal, error) {
	var profile models.LawyerProfile
	err := db.Where("profile_key = ?", models.ProfileKey).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return profile.DefaultHourlyRate, nil
}

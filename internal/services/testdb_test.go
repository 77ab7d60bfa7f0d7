package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/akazmin/lawbill/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(&models.LawyerProfile{}, &models.Client{}, &models.Project{}, &models.TimeEntry{}, &models.Invoice{}, &models.InvoiceItem{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedProfile(t *testing.T, db *gorm.DB, rate string) *models.LawyerProfile {
	t.Helper()
	profile := models.LawyerProfile{
		ProfileKey:           models.ProfileKey,
		FullName:             "A. Kazmin",
		CompanyName:          "Kazmin Legal",
		INN:                  "770000000000",
		Address:              "Moscow",
		BankName:             "Bank",
		BIK:                  "044525225",
		CheckingAccount:      "40802810000000000001",
		CorrespondentAccount: "30101810400000000225",
		Email:                "lawyer@example.com",
		Phone:                "+70000000000",
		DefaultHourlyRate:    dec(rate),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return &profile
}

func seedClient(t *testing.T, db *gorm.DB, name string) *models.Client {
	t.Helper()
	client := models.Client{Name: name}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return &client
}

func seedProject(t *testing.T, db *gorm.DB, clientID uint, name string, rate *decimal.Decimal) *models.Project {
	t.Helper()
	project := models.Project{ClientID: clientID, Name: name, HourlyRate: rate, Status: models.ProjectActive, Currency: "RUB"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return &project
}

func seedEntry(t *testing.T, db *gorm.DB, projectID uint, day time.Time, hours string, status models.TimeEntryStatus) *models.TimeEntry {
	t.Helper()
	entry := models.TimeEntry{ProjectID: projectID, Date: day, DurationHours: dec(hours), Status: status}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return &entry
}

func ratePtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

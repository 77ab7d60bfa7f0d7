package services

import (
	"errors"
	"testing"
	"time"

	"github.com/akazmin/lawbill/internal/models"
)

func TestClientDeleteBlockedByProjects(t *testing.T) {
	db := setupTestDB(t, t.Name())
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", nil)
	svc := NewClientService(db)

	var conflict *ConflictError
	if err := svc.Delete(client.ID); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError got %v", err)
	}

	// removing the project unblocks the delete
	if err := db.Delete(&models.Project{}, project.ID).Error; err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if err := svc.Delete(client.ID); err != nil {
		t.Fatalf("delete client after project removal: %v", err)
	}
	var count int64
	db.Model(&models.Client{}).Count(&count)
	if count != 0 {
		t.Fatalf("client still present")
	}
}

func TestClientDeleteNotFound(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewClientService(db)
	var nfErr *NotFoundError
	if err := svc.Delete(42); !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError got %v", err)
	}
}

func TestProjectDeleteBlockedByEntries(t *testing.T) {
	db := setupTestDB(t, t.Name())
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", nil)
	entry := seedEntry(t, db, project.ID, date(2026, time.March, 2), "1.0", models.EntryDraft)
	svc := NewProjectService(db)

	var conflict *ConflictError
	if err := svc.Delete(project.ID); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError got %v", err)
	}
	if err := db.Delete(&models.TimeEntry{}, entry.ID).Error; err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if err := svc.Delete(project.ID); err != nil {
		t.Fatalf("delete project after entry removal: %v", err)
	}
}

func TestProjectStats(t *testing.T) {
	db := setupTestDB(t, t.Name())
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", nil)
	seedEntry(t, db, project.ID, date(2026, time.March, 2), "2.0", models.EntryDraft)
	seedEntry(t, db, project.ID, date(2026, time.March, 3), "3.5", models.EntryConfirmed)
	seedEntry(t, db, project.ID, date(2026, time.March, 4), "4.0", models.EntryBilled)
	svc := NewProjectService(db)

	stats, err := svc.Stats(project.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalHours != 9.5 {
		t.Fatalf("total hours = %v want 9.5", stats.TotalHours)
	}
	if stats.ConfirmedHours != 3.5 {
		t.Fatalf("confirmed hours = %v want 3.5", stats.ConfirmedHours)
	}
	if stats.UnbilledHours != 5.5 {
		t.Fatalf("unbilled hours = %v want 5.5", stats.UnbilledHours)
	}
}

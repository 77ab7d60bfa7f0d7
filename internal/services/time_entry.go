package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/akazmin/lawbill/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimeEntryService enforces the draft -> confirmed -> billed lifecycle.
// The billed transition itself belongs to InvoiceService: it only happens
// when an entry's hours are attached to an invoice.
type TimeEntryService struct {
	DB *gorm.DB
}

func NewTimeEntryService(db *gorm.DB) *TimeEntryService { return &TimeEntryService{DB: db} }

type TimeEntryInput struct {
	ProjectID     uint            `json:"project_id"`
	Date          time.Time       `json:"date"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	Description   string          `json:"description"`
}

type TimeEntryUpdate struct {
	Date          *time.Time       `json:"date"`
	DurationHours *decimal.Decimal `json:"duration_hours"`
	Description   *string          `json:"description"`
}

// BulkConfirmResult reports the partial effect of a bulk confirm. Skips
// are expected, not errors.
type BulkConfirmResult struct {
	ConfirmedCount int    `json:"confirmed_count"`
	SkippedCount   int    `json:"skipped_count"`
	SkippedIDs     []uint `json:"skipped_ids"`
}

func validateDuration(d decimal.Decimal) *ValidationError {
	if !d.IsPositive() {
		return invalidField("duration_hours", "must_be_positive")
	}
	if !d.Mul(decimal.NewFromInt(10)).IsInteger() {
		return invalidField("duration_hours", "tenth_hour_granularity")
	}
	return nil
}

// Create stores a new entry, always in draft.
func (s *TimeEntryService) Create(in TimeEntryInput) (*models.TimeEntry, error) {
	if err := validateDuration(in.DurationHours); err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.DB.First(&project, in.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("project", in.ProjectID)
		}
		return nil, err
	}
	entry := models.TimeEntry{
		ProjectID:     in.ProjectID,
		Date:          models.DateOnly(in.Date),
		DurationHours: in.DurationHours,
		Description:   in.Description,
		Status:        models.EntryDraft,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update is legal while the entry is draft or confirmed. Billed entries
// are immutable.
func (s *TimeEntryService) Update(id uint, in TimeEntryUpdate) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := s.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("time_entry", id)
		}
		return nil, err
	}
	if entry.Status == models.EntryBilled {
		return nil, &ConflictError{Msg: "time_entry_billed"}
	}
	if in.DurationHours != nil {
		if err := validateDuration(*in.DurationHours); err != nil {
			return nil, err
		}
		entry.DurationHours = *in.DurationHours
	}
	if in.Date != nil {
		entry.Date = models.DateOnly(*in.Date)
	}
	if in.Description != nil {
		entry.Description = *in.Description
	}
	if err := s.DB.Save(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete is legal only in draft.
func (s *TimeEntryService) Delete(id uint) error {
	var entry models.TimeEntry
	if err := s.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("time_entry", id)
		}
		return err
	}
	if entry.Status != models.EntryDraft {
		return &ConflictError{Msg: fmt.Sprintf("only_draft_deletable: status=%s", entry.Status)}
	}
	return s.DB.Delete(&entry).Error
}

// Confirm moves a single draft entry to confirmed.
func (s *TimeEntryService) Confirm(id uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := s.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("time_entry", id)
		}
		return nil, err
	}
	if entry.Status != models.EntryDraft {
		return nil, &InvalidStateError{Msg: fmt.Sprintf("only_draft_confirmable: status=%s", entry.Status), IDs: []uint{id}}
	}
	entry.Status = models.EntryConfirmed
	if err := s.DB.Save(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// BulkConfirm confirms every draft entry in ids and skips the rest. The
// lookup is all-or-nothing: any absent id fails the whole call and no
// entry changes state.
func (s *TimeEntryService) BulkConfirm(ids []uint) (*BulkConfirmResult, error) {
	if len(ids) == 0 {
		return nil, invalidField("time_entry_ids", "required")
	}
	result := &BulkConfirmResult{SkippedIDs: []uint{}}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var entries []models.TimeEntry
		if err := tx.Where("id IN ?", ids).Find(&entries).Error; err != nil {
			return err
		}
		found := make(map[uint]bool, len(entries))
		for _, e := range entries {
			found[e.ID] = true
		}
		var missing []uint
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return notFound("time_entry", missing...)
		}
		for i := range entries {
			if entries[i].Status != models.EntryDraft {
				result.SkippedIDs = append(result.SkippedIDs, entries[i].ID)
				continue
			}
			entries[i].Status = models.EntryConfirmed
			if err := tx.Save(&entries[i]).Error; err != nil {
				return err
			}
			result.ConfirmedCount++
		}
		result.SkippedCount = len(result.SkippedIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

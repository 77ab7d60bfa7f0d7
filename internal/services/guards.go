package services

import (
	"errors"
	"fmt"

	"github.com/akazmin/lawbill/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dependent-entity deletion rules. The persistence layer cascades, but the
// domain independently refuses to delete an owner that still has children.

type ClientService struct {
	DB *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService { return &ClientService{DB: db} }

// Delete refuses while the client still owns projects.
func (s *ClientService) Delete(id uint) error {
	var client models.Client
	if err := s.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("client", id)
		}
		return err
	}
	var projects int64
	if err := s.DB.Model(&models.Project{}).Where("client_id = ?", id).Count(&projects).Error; err != nil {
		return err
	}
	if projects > 0 {
		return &ConflictError{Msg: fmt.Sprintf("client_has_projects: count=%d", projects)}
	}
	return s.DB.Delete(&client).Error
}

type ProjectService struct {
	DB *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService { return &ProjectService{DB: db} }

// Delete refuses while the project still owns time entries.
func (s *ProjectService) Delete(id uint) error {
	var project models.Project
	if err := s.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("project", id)
		}
		return err
	}
	var entries int64
	if err := s.DB.Model(&models.TimeEntry{}).Where("project_id = ?", id).Count(&entries).Error; err != nil {
		return err
	}
	if entries > 0 {
		return &ConflictError{Msg: fmt.Sprintf("project_has_time_entries: count=%d", entries)}
	}
	return s.DB.Delete(&project).Error
}

// ProjectStats aggregates the project's hours by lifecycle bucket.
type ProjectStats struct {
	TotalHours     float64 `json:"total_hours"`
	ConfirmedHours float64 `json:"confirmed_hours"`
	UnbilledHours  float64 `json:"unbilled_hours"`
}

// Stats sums entry hours: everything, confirmed only, and not-yet-billed.
func (s *ProjectService) Stats(projectID uint) (*ProjectStats, error) {
	var entries []models.TimeEntry
	if err := s.DB.Where("project_id = ?", projectID).Find(&entries).Error; err != nil {
		return nil, err
	}
	total, confirmed, unbilled := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range entries {
		total = total.Add(e.DurationHours)
		if e.Status == models.EntryConfirmed {
			confirmed = confirmed.Add(e.DurationHours)
		}
		if e.Status != models.EntryBilled {
			unbilled = unbilled.Add(e.DurationHours)
		}
	}
	return &ProjectStats{
		TotalHours:     total.Round(1).InexactFloat64(),
		ConfirmedHours: confirmed.Round(1).InexactFloat64(),
		UnbilledHours:  unbilled.Round(1).InexactFloat64(),
	}, nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/models"
	"github.com/akazmin/lawbill/internal/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TimeEntryHandler struct {
	DB  *gorm.DB
	Svc *services.TimeEntryService
}

func NewTimeEntryHandler(db *gorm.DB, svc *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{DB: db, Svc: svc}
}

// Wire dates arrive as "2006-01-02" strings; parsed here, never in the
// service layer.
type timeEntryRequest struct {
	ProjectID     *uint            `json:"project_id"`
	Date          *string          `json:"date"`
	DurationHours *decimal.Decimal `json:"duration_hours"`
	Description   *string          `json:"description"`
}

func parseWireDate(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	return t, err == nil
}

// List: GET /time-entries?client_id=&project_id=&date_from=&date_to=&status=
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := h.DB.Model(&models.TimeEntry{})
	clientID, err := uintParam(r, "client_id")
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"client_id": "invalid_id"})
		return
	}
	if clientID != nil {
		q = q.Joins("JOIN projects ON projects.id = time_entries.project_id").
			Where("projects.client_id = ?", *clientID)
	}
	projectID, err := uintParam(r, "project_id")
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"project_id": "invalid_id"})
		return
	}
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	if from, ok, err := dateParam(r, "date_from"); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"date_from": "invalid_date"})
		return
	} else if ok {
		q = q.Where("date >= ?", from)
	}
	if to, ok, err := dateParam(r, "date_to"); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"date_to": "invalid_date"})
		return
	} else if ok {
		q = q.Where("date <= ?", to)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.TimeEntryStatus(status).Valid() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown"})
			return
		}
		q = q.Where("time_entries.status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_time_entries", nil)
		return
	}
	var entries []models.TimeEntry
	if err := q.Order("date DESC, id DESC").Offset(p.Offset()).Limit(p.Size).Find(&entries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_time_entries", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, newPage(entries, total, p))
}

// Get: GET /time-entries/get?id=
func (h *TimeEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var entry models.TimeEntry
	if err := h.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "time_entry_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_time_entry", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// Create: POST /time-entries
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req timeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ProjectID == nil || req.Date == nil || req.DurationHours == nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
			map[string]string{"project_id": "required", "date": "required", "duration_hours": "required"})
		return
	}
	date, ok := parseWireDate(*req.Date)
	if !ok {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"date": "invalid_date"})
		return
	}
	in := services.TimeEntryInput{
		ProjectID:     *req.ProjectID,
		Date:          date,
		DurationHours: *req.DurationHours,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	entry, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

// Update: PUT /time-entries/update?id=
func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req timeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	upd := services.TimeEntryUpdate{
		DurationHours: req.DurationHours,
		Description:   req.Description,
	}
	if req.Date != nil {
		date, ok := parseWireDate(*req.Date)
		if !ok {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"date": "invalid_date"})
			return
		}
		upd.Date = &date
	}
	entry, err := h.Svc.Update(id, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// Delete: DELETE /time-entries/delete?id= — draft only
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirm: POST /time-entries/confirm?id=
func (h *TimeEntryHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	entry, err := h.Svc.Confirm(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// BulkConfirm: POST /time-entries/bulk-confirm
func (h *TimeEntryHandler) BulkConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeEntryIDs []uint `json:"time_entry_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	result, err := h.Svc.BulkConfirm(req.TimeEntryIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

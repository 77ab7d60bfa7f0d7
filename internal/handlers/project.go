package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/models"
	"github.com/akazmin/lawbill/internal/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	DB  *gorm.DB
	Svc *services.ProjectService
}

func NewProjectHandler(db *gorm.DB, svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{DB: db, Svc: svc}
}

type projectRequest struct {
	ClientID    *uint            `json:"client_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	// ClearRate distinguishes "leave the rate alone" from "drop the
	// project rate and fall back to the profile default".
	ClearRate bool    `json:"clear_hourly_rate"`
	Currency  *string `json:"currency"`
	Status    *string `json:"status"`
}

type projectDetail struct {
	models.Project
	Stats *services.ProjectStats `json:"stats"`
}

// List: GET /projects?client_id=&status=&page=&size=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := h.DB.Model(&models.Project{})
	clientID, err := uintParam(r, "client_id")
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"client_id": "invalid_id"})
		return
	}
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ProjectStatus(status).Valid() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown"})
			return
		}
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_projects", nil)
		return
	}
	var projects []models.Project
	if err := q.Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.Size).Find(&projects).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_projects", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, newPage(projects, total, p))
}

// Create: POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClientID == nil || req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"client_id": "required", "name": "required"})
		return
	}
	var client models.Client
	if err := h.DB.First(&client, *req.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	project := models.Project{
		ClientID:   *req.ClientID,
		Name:       *req.Name,
		HourlyRate: req.HourlyRate,
		Status:     models.ProjectActive,
		Currency:   "RUB",
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Currency != nil {
		project.Currency = *req.Currency
	}
	if req.Status != nil {
		if !models.ProjectStatus(*req.Status).Valid() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown"})
			return
		}
		project.Status = models.ProjectStatus(*req.Status)
	}
	if err := h.DB.Create(&project).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_project", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

// Get: GET /projects/get?id= — includes hour stats
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var project models.Project
	if err := h.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_project", nil)
		return
	}
	stats, err := h.Svc.Stats(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_project", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, projectDetail{Project: project, Stats: stats})
}

// Update: PUT /projects/update?id=
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var project models.Project
	if err := h.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "project_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_project", nil)
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
			return
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Currency != nil {
		project.Currency = *req.Currency
	}
	if req.Status != nil {
		if !models.ProjectStatus(*req.Status).Valid() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown"})
			return
		}
		project.Status = models.ProjectStatus(*req.Status)
	}
	if req.ClearRate {
		project.HourlyRate = nil
	} else if req.HourlyRate != nil {
		project.HourlyRate = req.HourlyRate
	}
	// Save skips nil fields; persist the cleared rate explicitly.
	if err := h.DB.Model(&project).Select("name", "description", "currency", "status", "hourly_rate").Updates(&project).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_project", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

// Delete: DELETE /projects/delete?id= — refused while time entries exist
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/models"
	"github.com/akazmin/lawbill/internal/services"
	"github.com/akazmin/lawbill/internal/validation"
	"gorm.io/gorm"
)

type ClientHandler struct {
	DB  *gorm.DB
	Svc *services.ClientService
}

func NewClientHandler(db *gorm.DB, svc *services.ClientService) *ClientHandler {
	return &ClientHandler{DB: db, Svc: svc}
}

type clientRequest struct {
	Name                 *string `json:"name"`
	ContactPerson        *string `json:"contact_person"`
	Email                *string `json:"email"`
	Phone                *string `json:"phone"`
	Address              *string `json:"address"`
	INN                  *string `json:"inn"`
	BankName             *string `json:"bank_name"`
	BIK                  *string `json:"bik"`
	CheckingAccount      *string `json:"checking_account"`
	CorrespondentAccount *string `json:"correspondent_account"`
	Notes                *string `json:"notes"`
}

func (req *clientRequest) apply(c *models.Client) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, req.Name)
	set(&c.ContactPerson, req.ContactPerson)
	set(&c.Email, req.Email)
	set(&c.Phone, req.Phone)
	set(&c.Address, req.Address)
	set(&c.INN, req.INN)
	set(&c.BankName, req.BankName)
	set(&c.BIK, req.BIK)
	set(&c.CheckingAccount, req.CheckingAccount)
	set(&c.CorrespondentAccount, req.CorrespondentAccount)
	set(&c.Notes, req.Notes)
}

// List: GET /clients?search=&page=&size=
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := h.DB.Model(&models.Client{})
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		q = q.Where("lower(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	var clients []models.Client
	if err := q.Order("name").Offset(p.Offset()).Limit(p.Size).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, newPage(clients, total, p))
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if req.Name == nil {
		v["name"] = "required"
	} else {
		validation.Required("name", *req.Name, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	var client models.Client
	req.apply(&client)
	if err := h.DB.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

// Get: GET /clients/get?id=
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Update: PUT /clients/update?id= — partial update
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
		return
	}
	req.apply(&client)
	if err := h.DB.Save(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: DELETE /clients/delete?id= — refused while projects exist
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/models"
	"github.com/akazmin/lawbill/internal/services"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc}
}

type invoiceCreateRequest struct {
	ClientID     uint   `json:"client_id"`
	TimeEntryIDs []uint `json:"time_entry_ids"`
	IssueDate    string `json:"issue_date"`
	DueDate      string `json:"due_date"`
	Notes        string `json:"notes"`
}

type invoiceUpdateRequest struct {
	IssueDate *string `json:"issue_date"`
	DueDate   *string `json:"due_date"`
	Notes     *string `json:"notes"`
}

// List: GET /invoices?client_id=&status=&date_from=&date_to=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := h.DB.Model(&models.Invoice{}).Preload("Items")
	clientID, err := uintParam(r, "client_id")
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"client_id": "invalid_id"})
		return
	}
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.InvoiceStatus(status).Valid() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown"})
			return
		}
		q = q.Where("status = ?", status)
	}
	if from, ok, err := dateParam(r, "date_from"); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"date_from": "invalid_date"})
		return
	} else if ok {
		q = q.Where("issue_date >= ?", from)
	}
	if to, ok, err := dateParam(r, "date_to"); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"date_to": "invalid_date"})
		return
	} else if ok {
		q = q.Where("issue_date <= ?", to)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	var invoices []models.Invoice
	if err := q.Order("issue_date DESC, id DESC").Offset(p.Offset()).Limit(p.Size).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, newPage(invoices, total, p))
}

// Create: POST /invoices — bills a set of confirmed time entries
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClientID == 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"client_id": "required"})
		return
	}
	issue, okIssue := parseWireDate(req.IssueDate)
	due, okDue := parseWireDate(req.DueDate)
	if !okIssue || !okDue {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
			map[string]string{"issue_date": "invalid_date", "due_date": "invalid_date"})
		return
	}
	invoice, err := h.Svc.Create(services.CreateInvoiceInput{
		ClientID:     req.ClientID,
		TimeEntryIDs: req.TimeEntryIDs,
		IssueDate:    issue,
		DueDate:      due,
		Notes:        req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

// Get: GET /invoices/get?id=
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var invoice models.Invoice
	if err := h.DB.Preload("Items").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// Update: PUT /invoices/update?id= — draft only
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req invoiceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	upd := services.InvoiceUpdate{Notes: req.Notes}
	if req.IssueDate != nil {
		issue, ok := parseWireDate(*req.IssueDate)
		if !ok {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"issue_date": "invalid_date"})
			return
		}
		upd.IssueDate = &issue
	}
	if req.DueDate != nil {
		due, ok := parseWireDate(*req.DueDate)
		if !ok {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"due_date": "invalid_date"})
			return
		}
		upd.DueDate = &due
	}
	invoice, err := h.Svc.Update(id, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// Delete: DELETE /invoices/delete?id= — draft only, releases entries
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Send: POST /invoices/send?id=
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	invoice, err := h.Svc.Send(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// Pay: POST /invoices/pay?id=
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	invoice, err := h.Svc.Pay(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

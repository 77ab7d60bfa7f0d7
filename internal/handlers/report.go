package handlers

import (
	"net/http"
	"time"

	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/services"
)

type ReportHandler struct {
	Svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{Svc: svc}
}

// Dashboard: GET /dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Svc.Dashboard(time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshot)
}

// Report: GET /reports?date_from=&date_to=&client_id=
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	from, okFrom, errFrom := dateParam(r, "date_from")
	to, okTo, errTo := dateParam(r, "date_to")
	if errFrom != nil || errTo != nil || !okFrom || !okTo {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
			map[string]string{"date_from": "required_date", "date_to": "required_date"})
		return
	}
	if to.Before(from) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
			map[string]string{"date_to": "before_date_from"})
		return
	}
	clientID, err := uintParam(r, "client_id")
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
			map[string]string{"client_id": "invalid_id"})
		return
	}
	report, err := h.Svc.PeriodReport(from, to, clientID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/services"
)

type ProfileHandler struct {
	Svc *services.ProfileService
}

func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{Svc: svc}
}

// Handle serves GET/PUT /profile. PUT creates on first call and partially
// updates afterwards.
func (h *ProfileHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profile, err := h.Svc.Get()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, profile)
	case http.MethodPut:
		var in services.ProfileInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		profile, err := h.Svc.Upsert(in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, profile)
	default:
		methodNotAllowed(w, "GET,PUT")
	}
}

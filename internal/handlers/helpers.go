package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/services"
)

const dateLayout = "2006-01-02"

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Anything untyped is a storage failure and stays opaque to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	var notFound *services.NotFoundError
	var invalidState *services.InvalidStateError
	var conflict *services.ConflictError
	var invalid *services.ValidationError
	var unconfigured *services.ConfigurationError
	switch {
	case errors.As(err, &notFound):
		httpx.JSONError(w, http.StatusNotFound, notFound.Error(), nil)
	case errors.As(err, &invalidState):
		httpx.JSONError(w, http.StatusConflict, invalidState.Error(), nil)
	case errors.As(err, &conflict):
		httpx.JSONError(w, http.StatusConflict, conflict.Error(), nil)
	case errors.As(err, &invalid):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", invalid.Violations)
	case errors.As(err, &unconfigured):
		httpx.JSONError(w, http.StatusUnprocessableEntity, unconfigured.Error(), nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// idParam reads ?id= as a positive integer; writes the error response
// itself when absent or malformed.
func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

func dateParam(r *http.Request, key string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// uintParam reads an optional positive-integer query param. Absent is
// fine (nil, nil); a present but malformed value is an error, never a
// silently dropped filter.
func uintParam(r *http.Request, key string) (*uint, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	id := uint(n)
	return &id, nil
}

// pagination mirrors the page/size envelope used by every list endpoint.
type pagination struct {
	Page int
	Size int
}

func (p pagination) Offset() int { return (p.Page - 1) * p.Size }

func pageParams(r *http.Request) pagination {
	p := pagination{Page: 1, Size: 50}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			p.Size = n
		}
	}
	return p
}

type page struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

func newPage(items any, total int64, p pagination) page {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return page{Items: items, Total: total, Page: p.Page, Size: p.Size, Pages: pages}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

package server

import (
	"log"
	"net/http"
	"time"

	"github.com/akazmin/lawbill/internal/handlers"
	"github.com/akazmin/lawbill/internal/httpx"
	"github.com/akazmin/lawbill/internal/services"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Profile (singleton configuration entity)
	profileHandler := handlers.NewProfileHandler(services.NewProfileService(db))
	mux.HandleFunc("/profile", profileHandler.Handle)

	// Clients
	ch := handlers.NewClientHandler(db, services.NewClientService(db))
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/clients/get", ch.Get)
	mux.HandleFunc("/clients/update", ch.Update)
	mux.HandleFunc("/clients/delete", ch.Delete)

	// Projects
	ph := handlers.NewProjectHandler(db, services.NewProjectService(db))
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/projects/get", ph.Get)
	mux.HandleFunc("/projects/update", ph.Update)
	mux.HandleFunc("/projects/delete", ph.Delete)

	// Time entries
	th := handlers.NewTimeEntryHandler(db, services.NewTimeEntryService(db))
	mux.HandleFunc("/time-entries", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			th.List(w, r)
		case http.MethodPost:
			th.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/time-entries/get", th.Get)
	mux.HandleFunc("/time-entries/update", th.Update)
	mux.HandleFunc("/time-entries/delete", th.Delete)
	mux.HandleFunc("/time-entries/confirm", th.Confirm)
	mux.HandleFunc("/time-entries/bulk-confirm", th.BulkConfirm)

	// Invoices
	ih := handlers.NewInvoiceHandler(db, services.NewInvoiceService(db))
	mux.HandleFunc("/invoices", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ih.List(w, r)
		case http.MethodPost:
			ih.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/invoices/get", ih.Get)
	mux.HandleFunc("/invoices/update", ih.Update)
	mux.HandleFunc("/invoices/delete", ih.Delete)
	mux.HandleFunc("/invoices/send", ih.Send)
	mux.HandleFunc("/invoices/pay", ih.Pay)

	// Reporting (read-only)
	rh := handlers.NewReportHandler(services.NewReportService(db))
	mux.HandleFunc("/dashboard", rh.Dashboard)
	mux.HandleFunc("/reports", rh.Report)

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

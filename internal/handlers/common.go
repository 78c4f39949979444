package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/borrowreport/internal/borrowing"
	"github.com/lehigh-university-libraries/borrowreport/internal/export"
	"github.com/lehigh-university-libraries/borrowreport/internal/report"
)

const (
	ReportPath = "/reports/borrowed"
	ExportPath = "/reports/borrowed/export"
	APIPath    = "/api/reports/borrowed"
)

type Handler struct {
	reports *report.Service
	browser *export.Browser
}

func New(reports *report.Service, browser *export.Browser) *Handler {
	return &Handler{
		reports: reports,
		browser: browser,
	}
}

// Routes registers every report endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc(ReportPath, h.HandleReportPage)
	mux.HandleFunc(APIPath, h.HandleReportJSON)
	mux.HandleFunc(ExportPath, h.HandleExport)
	mux.HandleFunc("/healthcheck", h.HandleHealthcheck)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, ReportPath, http.StatusFound)
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// bucketOrError reads the bucket query parameter
func (h *Handler) bucketOrError(w http.ResponseWriter, r *http.Request) (borrowing.Bucket, bool) {
	bucket, err := borrowing.ParseBucket(r.URL.Query().Get("bucket"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return bucket, true
}

// loadView builds the view for this request. It returns false when the
// client went away before the fetches settled; nothing should be written then.
func (h *Handler) loadView(r *http.Request, bucket borrowing.Bucket) (report.View, bool) {
	view, ok := h.reports.Load(r.Context(), bucket)
	if !ok {
		slog.Info("Client disconnected before report was ready", "path", r.URL.Path, "bucket", bucket)
	}
	return view, ok
}

func statusFor(view report.View) int {
	if view.State == report.StateError {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

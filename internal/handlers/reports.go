package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/borrowreport/internal/export"
	"github.com/lehigh-university-libraries/borrowreport/internal/report"
)

func (h *Handler) HandleReportPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	bucket, ok := h.bucketOrError(w, r)
	if !ok {
		return
	}
	view, ok := h.loadView(r, bucket)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := report.RenderPage(&buf, report.PageData{
		View:       view,
		Formats:    export.Formats,
		ExportPath: ExportPath,
	})
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(view))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write report page", "err", err)
	}
}

func (h *Handler) HandleReportJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	bucket, ok := h.bucketOrError(w, r)
	if !ok {
		return
	}
	view, ok := h.loadView(r, bucket)
	if !ok {
		return
	}
	h.writeJSON(w, statusFor(view), view)
}

// HandleExport builds the report and streams it back as a download. The
// artifact is generated per request and never stored.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	bucket, ok := h.bucketOrError(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	sink, err := export.New(format, h.browser)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, ok := h.loadView(r, bucket)
	if !ok {
		return
	}
	if view.State == report.StateError {
		h.writeError(w, view.Message, http.StatusBadGateway)
		return
	}

	doc, err := export.NewDocument(view)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := sink.Export(r.Context(), &buf, doc); err != nil {
		h.writeError(w, "Failed to export report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	name := doc.FileName(sink)
	w.Header().Set("Content-Type", sink.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write export", "file", name, "err", err)
		return
	}
	slog.Info("Report exported", "file", name, "bytes", buf.Len())
}

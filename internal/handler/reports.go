package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/report"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportSource defines the completed-order query needed by report handlers.
// Satisfied by *localstore.History.
type ReportSource interface {
	Between(from, to time.Time) []service.Order
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	source ReportSource
	loc    *time.Location
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewReportsHandler creates a new ReportsHandler. Dates are interpreted in loc.
func NewReportsHandler(source ReportSource, loc *time.Location, logger *zap.SugaredLogger) *ReportsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportsHandler{source: source, loc: loc, logger: logger, now: time.Now}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /reports behind an admin role check.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
	r.Get("/export.csv", h.ExportCSV)
}

// --- Response types ---

type summaryResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	report.Summary
}

// --- Handlers ---

// Summary returns sales totals for a date range.
// Query params: start_date, end_date (YYYY-MM-DD, inclusive), top.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	top := report.DefaultTopItems
	if s := r.URL.Query().Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid top"})
			return
		}
		top = n
	}

	orders := h.source.Between(startDate, endDate)
	writeJSON(w, http.StatusOK, summaryResponse{
		StartDate: startDate.Format("2006-01-02"),
		EndDate:   endDate.AddDate(0, 0, -1).Format("2006-01-02"),
		Summary:   report.Summarize(orders, h.loc, top),
	})
}

// ExportCSV streams completed order lines for a date range as a spreadsheet.
func (h *ReportsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	orders := h.source.Between(startDate, endDate)
	filename := fmt.Sprintf("orders-%s-to-%s.csv",
		startDate.Format("2006-01-02"), endDate.AddDate(0, 0, -1).Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, orders, h.loc); err != nil {
		h.logger.Warnw("write csv export", "error", err)
	}
}

// --- Helpers ---

// parseDateRange parses start_date and end_date query params in the café's
// time zone. Defaults to the last 30 days.
// Returns (startDate, endDate, error) where endDate is exclusive (next day midnight).
func (h *ReportsHandler) parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	now := h.now().In(h.loc)

	// Default: last 30 days (midnight to midnight in local time)
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc).AddDate(0, 0, -30)
	endDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc).AddDate(0, 0, 1)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		startDate = t
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		// Make end_date exclusive by adding 1 day
		endDate = t.AddDate(0, 0, 1)
	}

	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before end_date")
	}

	return startDate, endDate, nil
}

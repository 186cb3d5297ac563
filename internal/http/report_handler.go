package http

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kurodev-web-tools/attendance-management-system/internal/application"
)

type reportService interface {
	Report(ctx context.Context, params application.ReportParams) (application.Report, error)
	Headcount(ctx context.Context, params application.HeadcountParams) (application.Headcount, error)
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) reportParams(r *http.Request) application.ReportParams {
	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	return application.ReportParams{
		Principal: principal,
		UserID:    query.Get("user_id"),
		Period:    application.ReportPeriod(query.Get("period")),
		Reference: query.Get("reference"),
	}
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params := h.reportParams(r)
	logger := h.log(r.Context(), "Get", "principal_id", params.Principal.UserID, "period", string(params.Period))

	report, err := h.service.Report(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReportDTO(report))
}

// Export streams the report's daily rows as CSV for spreadsheet use.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params := h.reportParams(r)
	logger := h.log(r.Context(), "Export", "principal_id", params.Principal.UserID, "period", string(params.Period))

	report, err := h.service.Report(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "report export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s_%s.csv", report.UserID, report.Period, report.From)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	record := []string{"date", "work_minutes", "break_minutes", "first_check_in", "last_check_out", "complete", "busy_level", "long_work_alert"}
	if err := writer.Write(record); err != nil {
		logger.ErrorContext(r.Context(), "failed to write csv header", "error", err)
		return
	}
	for _, day := range report.Days {
		record = []string{
			day.Date.String(),
			strconv.Itoa(day.WorkMinutes),
			strconv.Itoa(day.BreakMinutes),
			formatInstant(day.FirstCheckIn),
			formatInstant(day.LastCheckOut),
			strconv.FormatBool(day.Complete),
			strconv.Itoa(day.BusyLevel),
			strconv.FormatBool(day.LongWorkAlert),
		}
		if err := writer.Write(record); err != nil {
			logger.ErrorContext(r.Context(), "failed to write csv row", "error", err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.ErrorContext(r.Context(), "csv flush failed", "error", err)
	}
}

func (h *ReportHandler) Headcount(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Headcount", "principal_id", principal.UserID)

	headcount, err := h.service.Headcount(r.Context(), application.HeadcountParams{
		Principal: principal,
		Date:      r.URL.Query().Get("date"),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "headcount failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, headcountDTO{
		Date:    headcount.Date.String(),
		Count:   headcount.Count,
		UserIDs: headcount.UserIDs,
	})
}

type reportDTO struct {
	UserID          string          `json:"user_id"`
	Period          string          `json:"period"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	TotalMinutes    int             `json:"total_minutes"`
	WorkDays        int             `json:"work_days"`
	AverageMinutes  int             `json:"average_minutes"`
	LongestDay      int             `json:"longest_day_minutes"`
	EarliestCheckIn string         `json:"earliest_check_in,omitempty"`
	LatestCheckOut  string         `json:"latest_check_out,omitempty"`
	Days            []reportDayDTO `json:"days"`
}

type reportDayDTO struct {
	Date          string `json:"date"`
	WorkMinutes   int    `json:"work_minutes"`
	BreakMinutes  int    `json:"break_minutes"`
	Complete      bool   `json:"complete"`
	FirstCheckIn  string `json:"first_check_in,omitempty"`
	LastCheckOut  string `json:"last_check_out,omitempty"`
	BusyLevel     int    `json:"busy_level,omitempty"`
	LongWorkAlert bool   `json:"long_work_alert"`
}

type headcountDTO struct {
	Date    string   `json:"date"`
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
}

func toReportDTO(report application.Report) reportDTO {
	dto := reportDTO{
		UserID:          report.UserID,
		Period:          string(report.Period),
		From:            report.From.String(),
		To:              report.To.String(),
		TotalMinutes:    report.TotalMinutes,
		WorkDays:        report.WorkDays,
		AverageMinutes:  report.AverageMinutes,
		LongestDay:      report.LongestDay,
		EarliestCheckIn: formatInstant(report.EarliestCheckIn),
		LatestCheckOut:  formatInstant(report.LatestCheckOut),
	}
	for _, day := range report.Days {
		dto.Days = append(dto.Days, reportDayDTO{
			Date:          day.Date.String(),
			WorkMinutes:   day.WorkMinutes,
			BreakMinutes:  day.BreakMinutes,
			Complete:      day.Complete,
			FirstCheckIn:  formatInstant(day.FirstCheckIn),
			LastCheckOut:  formatInstant(day.LastCheckOut),
			BusyLevel:     day.BusyLevel,
			LongWorkAlert: day.LongWorkAlert,
		})
	}
	return dto
}

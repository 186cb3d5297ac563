package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/application"
	"github.com/kurodev-web-tools/attendance-management-system/internal/worktime"
)

type attendanceService interface {
	CheckIn(ctx context.Context, principal application.Principal) (application.AttendanceRecord, error)
	CheckOut(ctx context.Context, principal application.Principal) (application.AttendanceRecord, error)
	StartBreak(ctx context.Context, principal application.Principal) (application.AttendanceRecord, error)
	EndBreak(ctx context.Context, principal application.Principal) (application.AttendanceRecord, error)
	Record(ctx context.Context, params application.RecordAttendanceParams) (application.AttendanceRecord, error)
	Today(ctx context.Context, principal application.Principal) (application.TodayStatus, error)
	ListAttendance(ctx context.Context, principal application.Principal, userID string, from, to worktime.Date) ([]application.AttendanceRecord, error)
	SetBusyLevel(ctx context.Context, params application.SetBusyLevelParams) (application.BusyLevel, error)
	GetBusyLevel(ctx context.Context, principal application.Principal, date string) (application.BusyLevel, error)
}

// cacheInvalidator is notified after every successful attendance write so
// cached reports are recomputed on the next query.
type cacheInvalidator interface {
	InvalidateCache()
}

type AttendanceHandler struct {
	service   attendanceService
	reports   cacheInvalidator
	responder responder
	logger    *slog.Logger
}

func NewAttendanceHandler(service attendanceService, reports cacheInvalidator, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{service: service, reports: reports, responder: newResponder(base), logger: base}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

func (h *AttendanceHandler) invalidateReports() {
	if h.reports != nil {
		h.reports.InvalidateCache()
	}
}

// stamp runs one of the tap style operations that need no request body.
func (h *AttendanceHandler) stamp(w http.ResponseWriter, r *http.Request, operation string, fn func(context.Context, application.Principal) (application.AttendanceRecord, error)) {
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID)

	record, err := fn(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "attendance stamp failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidateReports()
	logger.With("event_id", record.ID).InfoContext(r.Context(), "attendance stamped")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, attendanceResponse{Record: toAttendanceDTO(record)})
}

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.stamp(w, r, "CheckIn", h.service.CheckIn)
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.stamp(w, r, "CheckOut", h.service.CheckOut)
}

func (h *AttendanceHandler) StartBreak(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.stamp(w, r, "StartBreak", h.service.StartBreak)
}

func (h *AttendanceHandler) EndBreak(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.stamp(w, r, "EndBreak", h.service.EndBreak)
}

func (h *AttendanceHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req attendanceRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateRecord", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode attendance record", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRecord", "principal_id", principal.UserID, "user_id", req.UserID)

	record, err := h.service.Record(r.Context(), application.RecordAttendanceParams{
		Principal:  principal,
		UserID:     req.UserID,
		Date:       req.Date,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		BreakStart: req.BreakStart,
		BreakEnd:   req.BreakEnd,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "manual attendance record failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidateReports()
	logger.With("event_id", record.ID).InfoContext(r.Context(), "attendance recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, attendanceResponse{Record: toAttendanceDTO(record)})
}

func (h *AttendanceHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	var from, to worktime.Date
	if raw := query.Get("from"); raw != "" {
		parsed, err := worktime.ParseDate(raw)
		if err != nil {
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "from の日付形式が不正です。"})
			return
		}
		from = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := worktime.ParseDate(raw)
		if err != nil {
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "to の日付形式が不正です。"})
			return
		}
		to = parsed
	}

	logger := h.log(r.Context(), "ListRecords", "principal_id", principal.UserID)
	records, err := h.service.ListAttendance(r.Context(), principal, query.Get("user_id"), from, to)
	if err != nil {
		logger.ErrorContext(r.Context(), "attendance list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(records)).InfoContext(r.Context(), "attendance listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAttendanceResponse{Records: toAttendanceDTOs(records)})
}

func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Today", "principal_id", principal.UserID)

	status, err := h.service.Today(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "today status failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTodayDTO(status))
}

func (h *AttendanceHandler) SetBusyLevel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req busyLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetBusyLevel", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode busy level", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetBusyLevel", "principal_id", principal.UserID, "level", req.Level)

	level, err := h.service.SetBusyLevel(r.Context(), application.SetBusyLevelParams{
		Principal: principal,
		Date:      req.Date,
		Level:     req.Level,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "busy level update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "busy level recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, busyLevelResponse{Date: level.Date.String(), Level: level.Level})
}

func (h *AttendanceHandler) GetBusyLevel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "GetBusyLevel", "principal_id", principal.UserID)

	level, err := h.service.GetBusyLevel(r.Context(), principal, r.URL.Query().Get("date"))
	if err != nil {
		logger.ErrorContext(r.Context(), "busy level read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, busyLevelResponse{Date: level.Date.String(), Level: level.Level})
}

type attendanceRecordRequest struct {
	UserID     string `json:"user_id"`
	Date       string `json:"date"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

type attendanceResponse struct {
	Record attendanceDTO `json:"record"`
}

type listAttendanceResponse struct {
	Records []attendanceDTO `json:"records"`
}

type attendanceDTO struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Date       string `json:"date"`
	CheckIn    string `json:"check_in,omitempty"`
	CheckOut   string `json:"check_out,omitempty"`
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
	RecordedAt string `json:"recorded_at"`
}

type busyLevelRequest struct {
	Date  string `json:"date"`
	Level int    `json:"level"`
}

type busyLevelResponse struct {
	Date  string `json:"date"`
	Level int    `json:"level"`
}

type todayDTO struct {
	Date          string       `json:"date"`
	CheckedIn     bool         `json:"checked_in"`
	OnBreak       bool         `json:"on_break"`
	Complete      bool         `json:"complete"`
	WorkedMinutes int          `json:"worked_minutes"`
	BusyLevel     int          `json:"busy_level,omitempty"`
	Sessions      []sessionDTO `json:"sessions"`
}

type sessionDTO struct {
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out,omitempty"`
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(worktime.Location()).Format(time.RFC3339)
}

func toAttendanceDTO(record application.AttendanceRecord) attendanceDTO {
	recorded := record.RecordedAt
	return attendanceDTO{
		ID:         record.ID,
		UserID:     record.UserID,
		Date:       record.Date.String(),
		CheckIn:    formatInstant(record.CheckIn),
		CheckOut:   formatInstant(record.CheckOut),
		BreakStart: formatInstant(record.BreakStart),
		BreakEnd:   formatInstant(record.BreakEnd),
		RecordedAt: formatInstant(&recorded),
	}
}

func toAttendanceDTOs(records []application.AttendanceRecord) []attendanceDTO {
	if len(records) == 0 {
		return nil
	}
	out := make([]attendanceDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toAttendanceDTO(record))
	}
	return out
}

func toTodayDTO(status application.TodayStatus) todayDTO {
	dto := todayDTO{
		Date:          status.Date.String(),
		CheckedIn:     status.CheckedIn,
		OnBreak:       status.OnBreak,
		Complete:      status.Complete,
		WorkedMinutes: status.WorkedMinutes,
		BusyLevel:     status.BusyLevel,
	}
	for _, session := range status.Sessions {
		in := session.CheckIn
		dto.Sessions = append(dto.Sessions, sessionDTO{
			CheckIn:    formatInstant(&in),
			CheckOut:   formatInstant(session.CheckOut),
			BreakStart: formatInstant(session.BreakStart),
			BreakEnd:   formatInstant(session.BreakEnd),
		})
	}
	return dto
}

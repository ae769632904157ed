package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reg4rd/classroom-booking/internal/application"
	"github.com/reg4rd/classroom-booking/internal/booking"
)

type bookingService interface {
	BookSlots(ctx context.Context, params application.BookSlotsParams) (application.BookingResult, error)
	CancelReservations(ctx context.Context, params application.CancelReservationsParams) (application.CancelResult, error)
}

type gridService interface {
	Availability(ctx context.Context, params application.AvailabilityParams) (application.AvailabilityGrid, error)
	MySchedule(ctx context.Context, params application.MyScheduleParams) ([]application.ScheduleGroup, error)
	ValidDates() []booking.DateInfo
}

// BookingHandler serves the booking endpoints: slot reservation, the
// availability grid, the personal schedule, and bulk cancellation.
type BookingHandler struct {
	bookings  bookingService
	grid      gridService
	responder responder
	now       func() time.Time
	logger    *slog.Logger
}

func NewBookingHandler(bookings bookingService, grid gridService, now func() time.Time, logger *slog.Logger) *BookingHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &BookingHandler{bookings: bookings, grid: grid, responder: newResponder(base), now: now, logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// Book resolves a batch reservation request. A partially granted batch is
// still a success; conflicts come back as data with a warning message.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Book", "principal_id", principal.TeacherID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Book", "principal_id", principal.TeacherID, "room_id", req.RoomID)

	day, err := booking.ParseDate(req.Date)
	if err != nil {
		logger.ErrorContext(r.Context(), "unparseable booking date", "error", err, "error_kind", "bad_request")
		h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "Ngày đăng ký không hợp lệ."})
		return
	}

	result, err := h.bookings.BookSlots(r.Context(), application.BookSlotsParams{
		Principal: principal,
		RoomID:    strings.TrimSpace(req.RoomID),
		Day:       day,
		Periods:   booking.ParsePeriodTokens(req.Periods),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With(
		"booked_count", len(result.Booked),
		"conflicted_count", len(result.Conflicted),
	).InfoContext(r.Context(), "booking resolved")

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{
		Room:       toRoomDTO(result.Room),
		Date:       booking.FormatDate(result.Day),
		Granted:    periodInts(result.Booked),
		Conflicted: periodInts(result.Conflicted),
		Warning:    conflictWarning(result.Conflicted),
	})
}

// Grid serves the room-by-period availability view for one day and session.
func (h *BookingHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.grid == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Grid", "principal_id", principal.TeacherID)

	query := r.URL.Query()
	day := booking.NormalizeDay(h.now())
	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		parsed, err := booking.ParseDate(raw)
		if err != nil {
			logger.ErrorContext(r.Context(), "unparseable grid date", "error", err, "error_kind", "bad_request")
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "Ngày tra cứu không hợp lệ."})
			return
		}
		day = parsed
	}

	grid, err := h.grid.Availability(r.Context(), application.AvailabilityParams{
		Principal:      principal,
		Day:            day,
		Session:        booking.ParseSession(query.Get("session")),
		RoomFilter:     query.Get("room"),
		FreeForPeriods: booking.ParsePeriodTokens(query["periods"]),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "grid query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("row_count", len(grid.Rows)).InfoContext(r.Context(), "grid served")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toGridResponse(grid, h.grid.ValidDates()))
}

// MySchedule serves the caller's upcoming reservations grouped by day, room,
// and half-day session.
func (h *BookingHandler) MySchedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.grid == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "MySchedule", "principal_id", principal.TeacherID)

	groups, err := h.grid.MySchedule(r.Context(), application.MyScheduleParams{
		Principal: principal,
		From:      h.now(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("group_count", len(groups)).InfoContext(r.Context(), "schedule served")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponse(groups))
}

// Cancel removes the caller's reservations among the submitted ids. Ids the
// caller does not own are skipped silently; a zero count is not an error.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Cancel", "principal_id", principal.TeacherID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode cancel request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Cancel", "principal_id", principal.TeacherID)

	result, err := h.bookings.CancelReservations(r.Context(), application.CancelReservationsParams{
		Principal: principal,
		IDs:       splitIDList(req.ReservationIDs),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	message := fmt.Sprintf("Đã hủy %d lịch đăng ký.", result.Cancelled)
	if result.Cancelled == 0 {
		message = "Không tìm thấy lịch đăng ký hoặc bạn không có quyền hủy."
	}

	logger.With("cancelled_count", result.Cancelled).InfoContext(r.Context(), "cancellation resolved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, cancelResponse{
		Deleted: result.Cancelled,
		Message: message,
	})
}

type bookingRequest struct {
	RoomID  string   `json:"room_id"`
	Date    string   `json:"date"`
	Periods []string `json:"periods"`
}

type bookingResponse struct {
	Room       roomDTO `json:"room"`
	Date       string  `json:"date"`
	Granted    []int   `json:"granted"`
	Conflicted []int   `json:"conflicted"`
	Warning    string  `json:"warning,omitempty"`
}

type cancelRequest struct {
	ReservationIDs string `json:"reservation_ids"`
}

type cancelResponse struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

type dateInfoDTO struct {
	Date string `json:"date"`
	Week int    `json:"week"`
}

type slotCellDTO struct {
	Period        int    `json:"period"`
	Taken         bool   `json:"taken"`
	TeacherName   string `json:"teacher_name,omitempty"`
	Mine          bool   `json:"mine,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
}

type gridRowDTO struct {
	Room       roomDTO       `json:"room"`
	Cells      []slotCellDTO `json:"cells"`
	FreeForAll bool          `json:"free_for_all"`
}

type gridStatsDTO struct {
	TotalRooms          int `json:"total_rooms"`
	SessionReservations int `json:"session_reservations"`
	OwnReservations     int `json:"own_reservations"`
}

type gridResponse struct {
	Date       string        `json:"date"`
	Week       int           `json:"week"`
	Session    string        `json:"session"`
	Periods    []int         `json:"periods"`
	Rows       []gridRowDTO  `json:"rows"`
	Stats      gridStatsDTO  `json:"stats"`
	ValidDates []dateInfoDTO `json:"valid_dates"`
}

type scheduleEntryDTO struct {
	ID     string `json:"id"`
	Period int    `json:"period"`
}

type scheduleGroupDTO struct {
	Date    string             `json:"date"`
	Week    int                `json:"week"`
	Room    roomDTO            `json:"room"`
	Session string             `json:"session"`
	Periods []int              `json:"periods"`
	Entries []scheduleEntryDTO `json:"entries"`
}

type scheduleResponse struct {
	Groups []scheduleGroupDTO `json:"groups"`
}

func toGridResponse(grid application.AvailabilityGrid, dates []booking.DateInfo) gridResponse {
	rows := make([]gridRowDTO, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		cells := make([]slotCellDTO, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, slotCellDTO{
				Period:        int(cell.Period),
				Taken:         cell.Taken,
				TeacherName:   cell.TeacherName,
				Mine:          cell.Mine,
				ReservationID: cell.ReservationID,
			})
		}
		rows = append(rows, gridRowDTO{Room: toRoomDTO(row.Room), Cells: cells, FreeForAll: row.FreeForAll})
	}

	validDates := make([]dateInfoDTO, 0, len(dates))
	for _, d := range dates {
		validDates = append(validDates, dateInfoDTO{Date: booking.FormatDate(d.Day), Week: d.Week})
	}

	return gridResponse{
		Date:    booking.FormatDate(grid.Day),
		Week:    grid.Week,
		Session: string(grid.Session),
		Periods: periodInts(grid.Periods),
		Rows:    rows,
		Stats: gridStatsDTO{
			TotalRooms:          grid.Stats.TotalRooms,
			SessionReservations: grid.Stats.SessionReservations,
			OwnReservations:     grid.Stats.OwnReservations,
		},
		ValidDates: validDates,
	}
}

func toScheduleResponse(groups []application.ScheduleGroup) scheduleResponse {
	out := make([]scheduleGroupDTO, 0, len(groups))
	for _, group := range groups {
		entries := make([]scheduleEntryDTO, 0, len(group.Entries))
		for _, entry := range group.Entries {
			entries = append(entries, scheduleEntryDTO{ID: entry.ID, Period: int(entry.Period)})
		}
		out = append(out, scheduleGroupDTO{
			Date:    booking.FormatDate(group.Day),
			Week:    group.Week,
			Room:    toRoomDTO(group.Room),
			Session: string(group.Session),
			Periods: periodInts(group.Periods),
			Entries: entries,
		})
	}
	return scheduleResponse{Groups: out}
}

func periodInts(periods []booking.Period) []int {
	out := make([]int, 0, len(periods))
	for _, p := range periods {
		out = append(out, int(p))
	}
	return out
}

func splitIDList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sessionLabel(s booking.Session) string {
	if s == booking.SessionAfternoon {
		return "buổi chiều"
	}
	return "buổi sáng"
}

// conflictWarning renders the colliding periods grouped by their half-day
// session, e.g. "tiết 2, 3 (buổi sáng); tiết 2 (buổi chiều)".
func conflictWarning(conflicted []booking.Period) string {
	if len(conflicted) == 0 {
		return ""
	}

	bySession := map[booking.Session][]string{}
	for _, p := range conflicted {
		session := p.Session()
		bySession[session] = append(bySession[session], fmt.Sprintf("%d", p.SessionOrdinal()))
	}

	segments := make([]string, 0, 2)
	for _, session := range []booking.Session{booking.SessionMorning, booking.SessionAfternoon} {
		ordinals, ok := bySession[session]
		if !ok {
			continue
		}
		segments = append(segments, fmt.Sprintf("tiết %s (%s)", strings.Join(ordinals, ", "), sessionLabel(session)))
	}

	return "Các tiết sau đã có người đăng ký: " + strings.Join(segments, "; ") + "."
}

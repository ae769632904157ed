package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reg4rd/classroom-booking/internal/booking"
	"github.com/reg4rd/classroom-booking/internal/persistence"
)

// ReservationOrder selects how listed reservations are sorted.
type ReservationOrder int

const (
	// OrderDayPeriodRoom sorts by day, then period, then room name.
	OrderDayPeriodRoom ReservationOrder = iota
	// OrderDayRoomPeriod sorts by day, then room name, then period.
	OrderDayRoomPeriod
)

// ReservationQuery narrows queries issued to the reservation repository.
type ReservationQuery struct {
	Day       *time.Time
	DayFrom   *time.Time
	RoomID    string
	TeacherID string
	Periods   []booking.Period
	Order     ReservationOrder
}

// ReservationRepository captures the persistence interactions needed by the
// booking services. CreateReservation must refuse a slot another teacher
// already holds with ErrAlreadyExists; the storage uniqueness constraint is
// the arbiter, not any advisory check.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	SlotTaken(ctx context.Context, roomID string, day time.Time, period booking.Period) (bool, error)
	ListReservations(ctx context.Context, query ReservationQuery) ([]Reservation, error)
	DeleteByOwner(ctx context.Context, ids []string, teacherID string) (int, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// GridInvalidator flushes cached availability grids after a mutation.
type GridInvalidator interface {
	Invalidate()
}

// BookingService resolves batch reservation requests against the store.
type BookingService struct {
	reservations ReservationRepository
	rooms        RoomCatalog
	cache        GridInvalidator
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for booking operations. The cache may
// be nil when no grid cache is configured.
func NewBookingService(reservations ReservationRepository, rooms RoomCatalog, cache GridInvalidator, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		reservations: reservations,
		rooms:        rooms,
		cache:        cache,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// BookSlots attempts every requested period in ascending order and reports
// which slots were granted and which were already held. A slot lost to
// another teacher is data, not an error: the request succeeds whenever at
// least the input was valid. A storage failure aborts the remainder of the
// batch but already granted slots stand.
func (s *BookingService) BookSlots(ctx context.Context, params BookSlotsParams) (result BookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.reservations == nil || s.rooms == nil {
		err = fmt.Errorf("booking repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "BookSlots",
		"principal_id", params.Principal.TeacherID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to book slots", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"booked_count", len(result.Booked),
			"conflicted_count", len(result.Conflicted),
		).InfoContext(ctx, "booking resolved")
	}()

	if params.Principal.TeacherID == "" {
		err = ErrUnauthorized
		return
	}
	if params.Day.IsZero() {
		err = ErrInvalidRequest
		return
	}

	periods := booking.NormalizePeriods(params.Periods)
	if len(periods) == 0 {
		err = ErrInvalidRequest
		return
	}

	var room Room
	room, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			err = ErrRoomNotFound
		}
		return
	}

	day := booking.NormalizeDay(params.Day)
	result = BookingResult{Room: room, Day: day}

	defer func() {
		if len(result.Booked) > 0 && s.cache != nil {
			s.cache.Invalidate()
		}
	}()

	for _, period := range periods {
		var taken bool
		taken, err = s.reservations.SlotTaken(ctx, room.ID, day, period)
		if err != nil {
			err = fmt.Errorf("check slot %d: %w", period, err)
			return
		}
		if taken {
			result.Conflicted = append(result.Conflicted, period)
			continue
		}

		reservation := Reservation{
			ID:        s.idGenerator(),
			TeacherID: params.Principal.TeacherID,
			RoomID:    room.ID,
			Day:       day,
			Period:    period,
			CreatedAt: s.now(),
		}
		_, err = s.reservations.CreateReservation(ctx, reservation)
		if err != nil {
			// Another request won the slot between the check and the
			// insert; the uniqueness constraint settles it.
			if errors.Is(err, ErrAlreadyExists) || errors.Is(err, persistence.ErrDuplicate) {
				result.Conflicted = append(result.Conflicted, period)
				err = nil
				continue
			}
			err = fmt.Errorf("reserve slot %d: %w", period, err)
			return
		}
		result.Booked = append(result.Booked, period)
	}

	return
}

// CancelReservations removes the caller's reservations among the given ids.
// Ids the caller does not own are silently skipped; the count of rows
// actually removed is the only signal.
func (s *BookingService) CancelReservations(ctx context.Context, params CancelReservationsParams) (result CancelResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("booking repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "CancelReservations",
		"principal_id", params.Principal.TeacherID,
		"requested_count", len(params.IDs),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("cancelled_count", result.Cancelled).InfoContext(ctx, "reservations cancelled")
	}()

	if params.Principal.TeacherID == "" {
		err = ErrUnauthorized
		return
	}

	ids := make([]string, 0, len(params.IDs))
	for _, id := range params.IDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	var cancelled int
	cancelled, err = s.reservations.DeleteByOwner(ctx, ids, params.Principal.TeacherID)
	if err != nil {
		return
	}

	result.Cancelled = cancelled
	if cancelled > 0 && s.cache != nil {
		s.cache.Invalidate()
	}
	return
}

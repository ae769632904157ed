package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/reg4rd/classroom-booking/internal/booking"
)

// defaultDateWindow is the number of calendar days offered for booking.
const defaultDateWindow = 14

// RoomLister exposes room catalog listing.
type RoomLister interface {
	ListRooms(ctx context.Context) ([]Room, error)
}

// TeacherDirectory exposes teacher listing for display-name resolution.
type TeacherDirectory interface {
	ListTeachers(ctx context.Context) ([]Teacher, error)
}

// GridService projects reservations into the room-by-period availability
// grid and the grouped personal schedule.
type GridService struct {
	reservations  ReservationRepository
	rooms         RoomLister
	teachers      TeacherDirectory
	cache         *gridCache
	semesterStart time.Time
	dateWindow    int
	now           func() time.Time
	logger        *slog.Logger
}

// NewGridService wires dependencies for grid and schedule queries. A zero
// cacheTTL selects the default grid cache lifetime; a non-positive dateWindow
// selects the default two week booking window.
func NewGridService(reservations ReservationRepository, rooms RoomLister, teachers TeacherDirectory, semesterStart time.Time, cacheTTL time.Duration, dateWindow int, now func() time.Time, logger *slog.Logger) *GridService {
	if now == nil {
		now = time.Now
	}
	if dateWindow <= 0 {
		dateWindow = defaultDateWindow
	}
	return &GridService{
		reservations:  reservations,
		rooms:         rooms,
		teachers:      teachers,
		cache:         newGridCache(cacheTTL, 0, now),
		semesterStart: booking.NormalizeDay(semesterStart),
		dateWindow:    dateWindow,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// Cache returns the service's grid cache so booking mutations can flush it.
func (s *GridService) Cache() GridInvalidator {
	if s == nil {
		return nil
	}
	return s.cache
}

func (s *GridService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GridService", operation, attrs...)
}

// Availability builds the grid for one day and half-day session. Reservations
// outside the session's periods never leak into the view. When FreeForPeriods
// is set, rooms already booked in any of those periods on the day drop out of
// the rows while the stats keep counting every room. The own-reservation
// count in the stats is scoped to the caller, so cached grids are keyed per
// principal.
func (s *GridService) Availability(ctx context.Context, params AvailabilityParams) (grid AvailabilityGrid, err error) {
	if s == nil {
		err = fmt.Errorf("GridService is nil")
		return
	}
	if s.reservations == nil || s.rooms == nil {
		err = fmt.Errorf("grid repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "Availability",
		"principal_id", params.Principal.TeacherID,
		"session", string(params.Session),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build availability grid", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("row_count", len(grid.Rows)).InfoContext(ctx, "availability grid built")
	}()

	if params.Principal.TeacherID == "" {
		err = ErrUnauthorized
		return
	}
	if params.Day.IsZero() {
		err = ErrInvalidRequest
		return
	}

	day := booking.NormalizeDay(params.Day)
	session := params.Session
	if session != booking.SessionMorning && session != booking.SessionAfternoon {
		session = booking.SessionMorning
	}
	freeFor := booking.NormalizePeriods(params.FreeForPeriods)
	normalized := params
	normalized.Day = day
	normalized.Session = session
	normalized.FreeForPeriods = freeFor

	cacheKey := buildGridCacheKey(normalized)
	if cached, ok := s.cache.Get(cacheKey); ok {
		grid = cached
		return
	}

	var allRooms []Room
	allRooms, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = fmt.Errorf("list rooms: %w", err)
		return
	}

	rooms := filterRooms(allRooms, params.RoomFilter)
	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Name, rooms[j].Name) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})

	if len(freeFor) > 0 {
		// The free-for search spans the whole day, so an afternoon
		// reservation still hides the room from a morning view.
		var held []Reservation
		held, err = s.reservations.ListReservations(ctx, ReservationQuery{
			Day:     &day,
			Periods: freeFor,
			Order:   OrderDayRoomPeriod,
		})
		if err != nil {
			err = fmt.Errorf("list reservations: %w", err)
			return
		}
		booked := make(map[string]bool, len(held))
		for _, r := range held {
			booked[r.RoomID] = true
		}
		kept := rooms[:0]
		for _, room := range rooms {
			if !booked[room.ID] {
				kept = append(kept, room)
			}
		}
		rooms = kept
	}

	periods := session.Periods()

	var reservations []Reservation
	reservations, err = s.reservations.ListReservations(ctx, ReservationQuery{
		Day:     &day,
		Periods: periods,
		Order:   OrderDayRoomPeriod,
	})
	if err != nil {
		err = fmt.Errorf("list reservations: %w", err)
		return
	}

	names, err := s.teacherNames(ctx)
	if err != nil {
		return
	}

	type slotKey struct {
		roomID string
		period booking.Period
	}
	occupied := make(map[slotKey]Reservation, len(reservations))
	ownCount := 0
	for _, r := range reservations {
		occupied[slotKey{roomID: r.RoomID, period: r.Period}] = r
		if r.TeacherID == params.Principal.TeacherID {
			ownCount++
		}
	}

	rows := make([]RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		row := RoomAvailability{Room: room, Cells: make([]SlotCell, 0, len(periods)), FreeForAll: true}
		for _, period := range periods {
			cell := SlotCell{Period: period}
			if r, ok := occupied[slotKey{roomID: room.ID, period: period}]; ok {
				cell.Taken = true
				cell.TeacherName = displayName(names, r)
				cell.Mine = r.TeacherID == params.Principal.TeacherID
				cell.ReservationID = r.ID
				row.FreeForAll = false
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}

	grid = AvailabilityGrid{
		Day:     day,
		Week:    booking.WeekNumber(day, s.semesterStart),
		Session: session,
		Periods: periods,
		Rows:    rows,
		Stats: GridStats{
			TotalRooms:          len(allRooms),
			SessionReservations: len(reservations),
			OwnReservations:     ownCount,
		},
	}

	s.cache.Store(cacheKey, grid)
	return
}

// MySchedule returns the caller's upcoming reservations grouped into runs
// that share a day, room, and half-day session. Groups follow day order,
// then room name, then session.
func (s *GridService) MySchedule(ctx context.Context, params MyScheduleParams) (groups []ScheduleGroup, err error) {
	if s == nil {
		err = fmt.Errorf("GridService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("grid repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "MySchedule",
		"principal_id", params.Principal.TeacherID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build personal schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("group_count", len(groups)).InfoContext(ctx, "personal schedule built")
	}()

	if params.Principal.TeacherID == "" {
		err = ErrUnauthorized
		return
	}

	from := params.From
	if from.IsZero() {
		from = s.now()
	}
	from = booking.NormalizeDay(from)

	var reservations []Reservation
	reservations, err = s.reservations.ListReservations(ctx, ReservationQuery{
		TeacherID: params.Principal.TeacherID,
		DayFrom:   &from,
		Order:     OrderDayRoomPeriod,
	})
	if err != nil {
		err = fmt.Errorf("list reservations: %w", err)
		return
	}

	rooms, err := s.roomsByID(ctx)
	if err != nil {
		return
	}

	sort.SliceStable(reservations, func(i, j int) bool {
		a, b := reservations[i], reservations[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		if a.RoomID != b.RoomID {
			an, bn := strings.ToLower(rooms[a.RoomID].Name), strings.ToLower(rooms[b.RoomID].Name)
			if an != bn {
				return an < bn
			}
			return a.RoomID < b.RoomID
		}
		return a.Period < b.Period
	})

	for _, r := range reservations {
		session := r.Period.Session()
		if n := len(groups); n > 0 {
			last := &groups[n-1]
			if last.Day.Equal(r.Day) && last.Room.ID == r.RoomID && last.Session == session {
				last.Periods = append(last.Periods, r.Period)
				last.Entries = append(last.Entries, r)
				continue
			}
		}
		groups = append(groups, ScheduleGroup{
			Day:     r.Day,
			Week:    booking.WeekNumber(r.Day, s.semesterStart),
			Room:    rooms[r.RoomID],
			Session: session,
			Periods: []booking.Period{r.Period},
			Entries: []Reservation{r},
		})
	}

	return
}

// ValidDates returns the bookable dates offered to the presentation layer:
// the next two weeks excluding Sundays, each with its semester week number.
func (s *GridService) ValidDates() []booking.DateInfo {
	if s == nil {
		return nil
	}
	return booking.UpcomingDates(s.now(), s.semesterStart, s.dateWindow)
}

func (s *GridService) teacherNames(ctx context.Context) (map[string]string, error) {
	if s.teachers == nil {
		return nil, nil
	}
	teachers, err := s.teachers.ListTeachers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	names := make(map[string]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.DisplayName()
	}
	return names, nil
}

func (s *GridService) roomsByID(ctx context.Context) (map[string]Room, error) {
	if s.rooms == nil {
		return nil, nil
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	byID := make(map[string]Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}
	return byID, nil
}

func displayName(names map[string]string, r Reservation) string {
	if name, ok := names[r.TeacherID]; ok && name != "" {
		return name
	}
	if r.TeacherName != "" {
		return r.TeacherName
	}
	return r.TeacherID
}

func filterRooms(rooms []Room, filter string) []Room {
	needle := strings.ToLower(strings.TrimSpace(filter))
	out := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if needle != "" && !strings.Contains(strings.ToLower(room.Name), needle) {
			continue
		}
		out = append(out, room)
	}
	return out
}

package application

import (
	"time"

	"github.com/reg4rd/classroom-booking/internal/booking"
)

// Principal represents the authenticated teacher invoking a service method.
type Principal struct {
	TeacherID string
	IsAdmin   bool
}

// TeacherInput captures caller provided teacher attributes.
type TeacherInput struct {
	Login    string
	FullName string
	IsAdmin  bool
}

// Teacher represents a staff account exposed by the application services.
type Teacher struct {
	ID        string
	Login     string
	FullName  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the teacher's full name, falling back to the
// login when no full name is recorded.
func (t Teacher) DisplayName() string {
	if t.FullName != "" {
		return t.FullName
	}
	return t.Login
}

// CreateTeacherParams wraps the data required to create a teacher account.
type CreateTeacherParams struct {
	Principal Principal
	Input     TeacherInput
	Password  string
}

// UpdateTeacherParams wraps the data required to update a teacher account.
type UpdateTeacherParams struct {
	Principal Principal
	TeacherID string
	Input     TeacherInput
}

// TeacherCredentials models the authentication attributes persisted for a teacher.
type TeacherCredentials struct {
	Teacher      Teacher
	PasswordHash string
	Disabled     bool
}

// RoomInput captures caller provided room fields. Capacity may be nil
// when the room's size is not tracked.
type RoomInput struct {
	Name     string
	Capacity *int
}

// Room represents a catalog entry for a classroom.
type Room struct {
	ID        string
	Name      string
	Capacity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// Session represents an authenticated session issued to a teacher.
type Session struct {
	ID        string
	TeacherID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a teacher.
type AuthenticateParams struct {
	Login    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	Teacher Teacher
	Session Session
}

// Reservation represents one booked slot enriched with display data.
type Reservation struct {
	ID          string
	TeacherID   string
	TeacherName string
	RoomID      string
	RoomName    string
	Day         time.Time
	Period      booking.Period
	CreatedAt   time.Time
}

// BookSlotsParams wraps a batch booking request: one teacher, one room,
// one day, several periods.
type BookSlotsParams struct {
	Principal Principal
	RoomID    string
	Day       time.Time
	Periods   []booking.Period
}

// BookingResult reports the per-period outcome of a batch booking.
// Booked and Conflicted partition the requested periods.
type BookingResult struct {
	Room       Room
	Day        time.Time
	Booked     []booking.Period
	Conflicted []booking.Period
}

// CancelReservationsParams wraps an owner-scoped bulk cancellation.
type CancelReservationsParams struct {
	Principal Principal
	IDs       []string
}

// CancelResult reports how many reservations were actually removed.
type CancelResult struct {
	Cancelled int
}

// AvailabilityParams selects the day, half-day session, and optional
// room name filter for an availability grid. FreeForPeriods narrows the
// rows to rooms holding no reservation on the day in any of those
// periods, regardless of which session the periods fall in.
type AvailabilityParams struct {
	Principal      Principal
	Day            time.Time
	Session        booking.Session
	RoomFilter     string
	FreeForPeriods []booking.Period
}

// SlotCell is one cell of the availability grid.
type SlotCell struct {
	Period        booking.Period
	Taken         bool
	TeacherName   string
	Mine          bool
	ReservationID string
}

// RoomAvailability is one grid row: a room and its cells for the
// session's periods.
type RoomAvailability struct {
	Room       Room
	Cells      []SlotCell
	FreeForAll bool
}

// GridStats carries the summary figures shown alongside the grid.
type GridStats struct {
	TotalRooms          int
	SessionReservations int
	OwnReservations     int
}

// AvailabilityGrid is the projected room-by-period view for one day
// and session.
type AvailabilityGrid struct {
	Day     time.Time
	Week    int
	Session booking.Session
	Periods []booking.Period
	Rows    []RoomAvailability
	Stats   GridStats
}

// MyScheduleParams wraps a personal schedule query.
type MyScheduleParams struct {
	Principal Principal
	From      time.Time
}

// ScheduleGroup is one run of a teacher's reservations sharing the
// same day, room, and half-day session.
type ScheduleGroup struct {
	Day     time.Time
	Week    int
	Room    Room
	Session booking.Session
	Periods []booking.Period
	Entries []Reservation
}

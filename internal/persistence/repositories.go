package persistence

import "context"
import "time"

// TeacherRepository exposes CRUD operations for teacher accounts.
type TeacherRepository interface {
	CreateTeacher(ctx context.Context, teacher Teacher) error
	UpdateTeacher(ctx context.Context, teacher Teacher) error
	GetTeacher(ctx context.Context, id string) (Teacher, error)
	GetTeacherByLogin(ctx context.Context, login string) (Teacher, error)
	ListTeachers(ctx context.Context) ([]Teacher, error)
	DeleteTeacher(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for classrooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ReservationOrder selects the sort applied by ListReservations.
type ReservationOrder int

const (
	// OrderByDayPeriodRoom sorts by day, then period, then room name.
	OrderByDayPeriodRoom ReservationOrder = iota
	// OrderByDayRoomPeriod sorts by day, then room name, then period.
	OrderByDayRoomPeriod
)

// ReservationFilter narrows reservation queries. Zero-valued fields
// are ignored.
type ReservationFilter struct {
	Day       *time.Time
	DayFrom   *time.Time
	RoomID    string
	TeacherID string
	Periods   []int
}

// ReservationRepository stores reservation slots. The store enforces
// that at most one reservation exists per (room, day, period).
type ReservationRepository interface {
	// CreateReservation inserts a reservation. It returns ErrDuplicate
	// when the slot is already held, whether the holder is the same
	// teacher or another one.
	CreateReservation(ctx context.Context, reservation Reservation) error
	// SlotTaken reports whether the (room, day, period) slot is held.
	SlotTaken(ctx context.Context, roomID string, day time.Time, period int) (bool, error)
	ListReservations(ctx context.Context, filter ReservationFilter, order ReservationOrder) ([]Reservation, error)
	// DeleteByOwner removes the reservations in ids that belong to
	// teacherID and returns how many rows were removed. IDs held by
	// other teachers are left untouched.
	DeleteByOwner(ctx context.Context, ids []string, teacherID string) (int, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

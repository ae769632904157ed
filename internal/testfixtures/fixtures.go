// Package testfixtures centralises deterministic builders for the domain
// entities used across persistence and application tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/reg4rd/classroom-booking/internal/application"
	"github.com/reg4rd/classroom-booking/internal/booking"
	"github.com/reg4rd/classroom-booking/internal/persistence"
)

var (
	teacherCounter     atomic.Uint64
	roomCounter        atomic.Uint64
	reservationCounter atomic.Uint64
	sessionCounter     atomic.Uint64
)

// ReferenceTime returns the shared deterministic timestamp fixtures build on.
func ReferenceTime() time.Time {
	return time.Date(2025, time.September, 8, 8, 0, 0, 0, time.UTC)
}

// ReferenceDay returns the calendar date of ReferenceTime.
func ReferenceDay() time.Time {
	return booking.NormalizeDay(ReferenceTime())
}

// TeacherFixture is a deterministic teacher account for tests.
type TeacherFixture struct {
	ID           string
	Login        string
	FullName     string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TeacherOption mutates a TeacherFixture during construction.
type TeacherOption func(*TeacherFixture)

// NewTeacher builds a teacher fixture with unique login and id.
func NewTeacher(opts ...TeacherOption) TeacherFixture {
	n := teacherCounter.Add(1)
	fixture := TeacherFixture{
		ID:           fmt.Sprintf("teacher-%d", n),
		Login:        fmt.Sprintf("teacher%d", n),
		FullName:     fmt.Sprintf("Teacher %d", n),
		PasswordHash: "hash",
		CreatedAt:    ReferenceTime(),
		UpdatedAt:    ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTeacherID overrides the fixture id.
func WithTeacherID(id string) TeacherOption {
	return func(f *TeacherFixture) { f.ID = id }
}

// WithLogin overrides the fixture login.
func WithLogin(login string) TeacherOption {
	return func(f *TeacherFixture) { f.Login = login }
}

// WithFullName overrides the fixture full name.
func WithFullName(name string) TeacherOption {
	return func(f *TeacherFixture) { f.FullName = name }
}

// WithPasswordHash overrides the stored password hash.
func WithPasswordHash(hash string) TeacherOption {
	return func(f *TeacherFixture) { f.PasswordHash = hash }
}

// AsAdmin marks the fixture as an administrator.
func AsAdmin() TeacherOption {
	return func(f *TeacherFixture) { f.IsAdmin = true }
}

// AsDisabled marks the fixture account as disabled.
func AsDisabled() TeacherOption {
	return func(f *TeacherFixture) { f.Disabled = true }
}

// Persistence converts the fixture into the persistence model.
func (f TeacherFixture) Persistence() persistence.Teacher {
	return persistence.Teacher{
		ID:           f.ID,
		Login:        f.Login,
		FullName:     f.FullName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Application converts the fixture into the application model.
func (f TeacherFixture) Application() application.Teacher {
	return application.Teacher{
		ID:        f.ID,
		Login:     f.Login,
		FullName:  f.FullName,
		IsAdmin:   f.IsAdmin,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Principal converts the fixture into an acting principal.
func (f TeacherFixture) Principal() application.Principal {
	return application.Principal{TeacherID: f.ID, IsAdmin: f.IsAdmin}
}

// RoomFixture is a deterministic classroom for tests.
type RoomFixture struct {
	ID        string
	Name      string
	Capacity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption mutates a RoomFixture during construction.
type RoomOption func(*RoomFixture)

// NewRoom builds a room fixture with unique name and id.
func NewRoom(opts ...RoomOption) RoomFixture {
	n := roomCounter.Add(1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%d", n),
		Name:      fmt.Sprintf("Room %d", n),
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the fixture id.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) { f.ID = id }
}

// WithRoomName overrides the fixture name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) { f.Name = name }
}

// WithCapacity sets the fixture capacity.
func WithCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) { f.Capacity = &capacity }
}

// Persistence converts the fixture into the persistence model.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Application converts the fixture into the application model.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ReservationFixture is a deterministic booked slot for tests.
type ReservationFixture struct {
	ID        string
	TeacherID string
	RoomID    string
	Day       time.Time
	Period    booking.Period
	CreatedAt time.Time
}

// ReservationOption mutates a ReservationFixture during construction.
type ReservationOption func(*ReservationFixture)

// NewReservation builds a reservation fixture on the reference day. The
// teacher and room ids default to placeholders and normally come from
// WithOwner and WithRoom.
func NewReservation(opts ...ReservationOption) ReservationFixture {
	n := reservationCounter.Add(1)
	fixture := ReservationFixture{
		ID:        fmt.Sprintf("reservation-%d", n),
		TeacherID: "teacher-unset",
		RoomID:    "room-unset",
		Day:       ReferenceDay(),
		Period:    booking.PeriodMin,
		CreatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the fixture id.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) { f.ID = id }
}

// WithOwner sets the reserving teacher.
func WithOwner(teacherID string) ReservationOption {
	return func(f *ReservationFixture) { f.TeacherID = teacherID }
}

// WithRoom sets the reserved room.
func WithRoom(roomID string) ReservationOption {
	return func(f *ReservationFixture) { f.RoomID = roomID }
}

// OnDay sets the reserved date.
func OnDay(day time.Time) ReservationOption {
	return func(f *ReservationFixture) { f.Day = booking.NormalizeDay(day) }
}

// AtPeriod sets the reserved period.
func AtPeriod(period booking.Period) ReservationOption {
	return func(f *ReservationFixture) { f.Period = period }
}

// Persistence converts the fixture into the persistence model.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:        f.ID,
		TeacherID: f.TeacherID,
		RoomID:    f.RoomID,
		Day:       f.Day,
		Period:    int(f.Period),
		CreatedAt: f.CreatedAt,
	}
}

// Application converts the fixture into the application model.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:        f.ID,
		TeacherID: f.TeacherID,
		RoomID:    f.RoomID,
		Day:       f.Day,
		Period:    f.Period,
		CreatedAt: f.CreatedAt,
	}
}

// SessionFixture is a deterministic authentication session for tests.
type SessionFixture struct {
	ID        string
	TeacherID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption mutates a SessionFixture during construction.
type SessionOption func(*SessionFixture)

// NewSession builds a session fixture valid for 24 hours from ReferenceTime.
func NewSession(opts ...SessionOption) SessionFixture {
	n := sessionCounter.Add(1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%d", n),
		TeacherID: "teacher-unset",
		Token:     fmt.Sprintf("token-%d", n),
		ExpiresAt: ReferenceTime().Add(24 * time.Hour),
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionOwner sets the session's teacher.
func WithSessionOwner(teacherID string) SessionOption {
	return func(f *SessionFixture) { f.TeacherID = teacherID }
}

// WithToken overrides the session token.
func WithToken(token string) SessionOption {
	return func(f *SessionFixture) { f.Token = token }
}

// ExpiresAt overrides the session expiry.
func ExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = t }
}

// Revoked marks the session as revoked at the given time.
func Revoked(at time.Time) SessionOption {
	return func(f *SessionFixture) { f.RevokedAt = &at }
}

// Persistence converts the fixture into the persistence model.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		TeacherID: f.TeacherID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: f.RevokedAt,
	}
}

// Application converts the fixture into the application model.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		TeacherID: f.TeacherID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: f.RevokedAt,
	}
}

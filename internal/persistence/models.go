package persistence

import "time"

// Teacher represents a staff account able to reserve rooms.
type Teacher struct {
	ID           string
	Login        string
	FullName     string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a classroom catalog entry. Capacity is optional.
type Room struct {
	ID        string
	Name      string
	Capacity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation represents one teacher holding one room for one period
// of one day.
type Reservation struct {
	ID        string
	TeacherID string
	RoomID    string
	Day       time.Time
	Period    int
	CreatedAt time.Time
}

// Session represents an authentication session persisted for a teacher.
type Session struct {
	ID        string
	TeacherID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

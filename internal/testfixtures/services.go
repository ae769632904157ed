package testfixtures

import (
	"log/slog"
	"time"

	"github.com/reg4rd/classroom-booking/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Reservations application.ReservationRepository
	Rooms        application.RoomCatalog
	Cache        application.GridInvalidator
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBookingService(
		deps.Reservations,
		deps.Rooms,
		deps.Cache,
		idGen,
		now,
		deps.Logger,
	)
}

// GridServiceDeps captures dependencies for constructing a grid service.
type GridServiceDeps struct {
	Reservations  application.ReservationRepository
	Rooms         application.RoomLister
	Teachers      application.TeacherDirectory
	SemesterStart time.Time
	CacheTTL      time.Duration
	DateWindow    int
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewGridService builds a grid service using the supplied dependencies.
func (f *ServiceFactory) NewGridService(deps GridServiceDeps) *application.GridService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	semesterStart := deps.SemesterStart
	if semesterStart.IsZero() {
		semesterStart = ReferenceDay()
	}
	return application.NewGridService(
		deps.Reservations,
		deps.Rooms,
		deps.Teachers,
		semesterStart,
		deps.CacheTTL,
		deps.DateWindow,
		now,
		deps.Logger,
	)
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms       application.RoomRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRoomService builds a room service using the supplied dependencies.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRoomServiceWithLogger(
		deps.Rooms,
		idGen,
		now,
		deps.Logger,
	)
}

// TeacherServiceDeps captures dependencies for constructing a teacher service.
type TeacherServiceDeps struct {
	Teachers    application.TeacherRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTeacherService builds a teacher service using the supplied dependencies.
func (f *ServiceFactory) NewTeacherService(deps TeacherServiceDeps) *application.TeacherService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTeacherServiceWithLogger(
		deps.Teachers,
		idGen,
		now,
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}

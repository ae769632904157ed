package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/reg4rd/classroom-booking/internal/application"
	"github.com/reg4rd/classroom-booking/internal/booking"
	"github.com/reg4rd/classroom-booking/internal/config"
	httptransport "github.com/reg4rd/classroom-booking/internal/http"
	"github.com/reg4rd/classroom-booking/internal/persistence"
	"github.com/reg4rd/classroom-booking/internal/persistence/sqlite"
	"github.com/reg4rd/classroom-booking/internal/persistence/sqlite/migration"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	migrator := migration.NewManager(sqlite.MigrationSource(), migration.NewSQLiteExecutor(pool.DB()), logger)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	teacherRepo := newTeacherRepositoryAdapter(sqlite.NewTeacherRepository(pool))
	roomRepo := newRoomRepositoryAdapter(sqlite.NewRoomRepository(pool))
	reservationRepo := newReservationRepositoryAdapter(sqlite.NewReservationRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))
	credentialStore := newCredentialStoreAdapter(sqlite.NewTeacherRepository(pool))

	gridService := application.NewGridService(reservationRepo, roomRepo, teacherRepo, cfg.SemesterStart, cfg.GridCacheTTL, cfg.DateWindow, now, logger)
	bookingService := application.NewBookingService(reservationRepo, roomRepo, gridService.Cache(), idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)
	teacherService := application.NewTeacherServiceWithLogger(teacherRepo, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(credentialStore, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	teacherHandler := httptransport.NewTeacherHandler(teacherService, logger)
	roomHandler := httptransport.NewRoomHandler(roomService, logger)
	bookingHandler := httptransport.NewBookingHandler(bookingService, gridService, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     authHandler,
		Teachers: teacherHandler,
		Rooms:    roomHandler,
		Bookings: bookingHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/sessions") && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type teacherRepositoryAdapter struct {
	repo persistence.TeacherRepository
}

func newTeacherRepositoryAdapter(repo persistence.TeacherRepository) *teacherRepositoryAdapter {
	return &teacherRepositoryAdapter{repo: repo}
}

func (a *teacherRepositoryAdapter) CreateTeacher(ctx context.Context, teacher application.Teacher, passwordHash string) (application.Teacher, error) {
	if err := a.repo.CreateTeacher(ctx, toPersistenceTeacher(teacher, passwordHash)); err != nil {
		return application.Teacher{}, err
	}
	stored, err := a.repo.GetTeacher(ctx, teacher.ID)
	if err != nil {
		return application.Teacher{}, err
	}
	return toApplicationTeacher(stored), nil
}

func (a *teacherRepositoryAdapter) GetTeacher(ctx context.Context, id string) (application.Teacher, error) {
	stored, err := a.repo.GetTeacher(ctx, id)
	if err != nil {
		return application.Teacher{}, err
	}
	return toApplicationTeacher(stored), nil
}

func (a *teacherRepositoryAdapter) UpdateTeacher(ctx context.Context, teacher application.Teacher) (application.Teacher, error) {
	current, err := a.repo.GetTeacher(ctx, teacher.ID)
	if err != nil {
		return application.Teacher{}, err
	}
	if err := a.repo.UpdateTeacher(ctx, toPersistenceTeacher(teacher, current.PasswordHash)); err != nil {
		return application.Teacher{}, err
	}
	stored, err := a.repo.GetTeacher(ctx, teacher.ID)
	if err != nil {
		return application.Teacher{}, err
	}
	return toApplicationTeacher(stored), nil
}

func (a *teacherRepositoryAdapter) DeleteTeacher(ctx context.Context, id string) error {
	return a.repo.DeleteTeacher(ctx, id)
}

func (a *teacherRepositoryAdapter) ListTeachers(ctx context.Context) ([]application.Teacher, error) {
	models, err := a.repo.ListTeachers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	teachers := make([]application.Teacher, 0, len(models))
	for _, model := range models {
		teachers = append(teachers, toApplicationTeacher(model))
	}
	return teachers, nil
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

func (a *reservationRepositoryAdapter) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.CreateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return reservation, nil
}

func (a *reservationRepositoryAdapter) SlotTaken(ctx context.Context, roomID string, day time.Time, period booking.Period) (bool, error) {
	return a.repo.SlotTaken(ctx, roomID, day, int(period))
}

func (a *reservationRepositoryAdapter) ListReservations(ctx context.Context, query application.ReservationQuery) ([]application.Reservation, error) {
	filter := persistence.ReservationFilter{
		Day:       query.Day,
		DayFrom:   query.DayFrom,
		RoomID:    query.RoomID,
		TeacherID: query.TeacherID,
	}
	for _, p := range query.Periods {
		filter.Periods = append(filter.Periods, int(p))
	}

	order := persistence.OrderByDayPeriodRoom
	if query.Order == application.OrderDayRoomPeriod {
		order = persistence.OrderByDayRoomPeriod
	}

	models, err := a.repo.ListReservations(ctx, filter, order)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, toApplicationReservation(model))
	}
	return reservations, nil
}

func (a *reservationRepositoryAdapter) DeleteByOwner(ctx context.Context, ids []string, teacherID string) (int, error) {
	return a.repo.DeleteByOwner(ctx, ids, teacherID)
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type credentialStoreAdapter struct {
	repo persistence.TeacherRepository
}

func newCredentialStoreAdapter(repo persistence.TeacherRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetTeacherCredentialsByLogin(ctx context.Context, login string) (application.TeacherCredentials, error) {
	stored, err := a.repo.GetTeacherByLogin(ctx, login)
	if err != nil {
		return application.TeacherCredentials{}, err
	}
	return application.TeacherCredentials{
		Teacher:      toApplicationTeacher(stored),
		PasswordHash: stored.PasswordHash,
		Disabled:     stored.Disabled,
	}, nil
}

func (a *credentialStoreAdapter) GetTeacher(ctx context.Context, id string) (application.Teacher, error) {
	stored, err := a.repo.GetTeacher(ctx, id)
	if err != nil {
		return application.Teacher{}, err
	}
	return toApplicationTeacher(stored), nil
}

func toApplicationTeacher(model persistence.Teacher) application.Teacher {
	return application.Teacher{
		ID:        model.ID,
		Login:     model.Login,
		FullName:  model.FullName,
		IsAdmin:   model.IsAdmin,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceTeacher(teacher application.Teacher, passwordHash string) persistence.Teacher {
	return persistence.Teacher{
		ID:           teacher.ID,
		Login:        teacher.Login,
		FullName:     teacher.FullName,
		PasswordHash: passwordHash,
		IsAdmin:      teacher.IsAdmin,
		CreatedAt:    teacher.CreatedAt,
		UpdatedAt:    teacher.UpdatedAt,
	}
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:        model.ID,
		Name:      model.Name,
		Capacity:  cloneInt(model.Capacity),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  cloneInt(room.Capacity),
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:        model.ID,
		TeacherID: model.TeacherID,
		RoomID:    model.RoomID,
		Day:       model.Day,
		Period:    booking.Period(model.Period),
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:        reservation.ID,
		TeacherID: reservation.TeacherID,
		RoomID:    reservation.RoomID,
		Day:       reservation.Day,
		Period:    int(reservation.Period),
		CreatedAt: reservation.CreatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		TeacherID: model.TeacherID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		TeacherID: session.TeacherID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

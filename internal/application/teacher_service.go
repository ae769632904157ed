package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/reg4rd/classroom-booking/internal/persistence"
)

var loginPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// TeacherRepository captures the persistence operations needed by the teacher service.
type TeacherRepository interface {
	CreateTeacher(ctx context.Context, teacher Teacher, passwordHash string) (Teacher, error)
	GetTeacher(ctx context.Context, id string) (Teacher, error)
	UpdateTeacher(ctx context.Context, teacher Teacher) (Teacher, error)
	DeleteTeacher(ctx context.Context, id string) error
	ListTeachers(ctx context.Context) ([]Teacher, error)
}

// TeacherService orchestrates validation, authorization, and persistence
// for teacher accounts.
type TeacherService struct {
	teachers    TeacherRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTeacherService wires dependencies for the teacher service.
func NewTeacherService(teachers TeacherRepository, idGenerator func() string, now func() time.Time) *TeacherService {
	return NewTeacherServiceWithLogger(teachers, idGenerator, now, nil)
}

// NewTeacherServiceWithLogger constructs a teacher service with a specified logger.
func NewTeacherServiceWithLogger(teachers TeacherRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TeacherService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TeacherService{teachers: teachers, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *TeacherService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TeacherService", operation, attrs...)
}

// CreateTeacher validates input, hashes the initial password, and persists
// a new account for administrators.
func (s *TeacherService) CreateTeacher(ctx context.Context, params CreateTeacherParams) (teacher Teacher, err error) {
	if s == nil {
		err = fmt.Errorf("TeacherService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTeacher",
		"principal_id", params.Principal.TeacherID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create teacher", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("teacher_id", teacher.ID).InfoContext(ctx, "teacher created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeTeacherInput(params.Input)
	vErr := validateTeacherInput(normalized)
	if strings.TrimSpace(params.Password) == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = HashPassword(params.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	teacher = Teacher{
		ID:        s.idGenerator(),
		Login:     normalized.Login,
		FullName:  normalized.FullName,
		IsAdmin:   normalized.IsAdmin,
		CreatedAt: s.now(),
	}
	teacher.UpdatedAt = teacher.CreatedAt

	if s.teachers == nil {
		return
	}

	var persisted Teacher
	persisted, err = s.teachers.CreateTeacher(ctx, teacher, hash)
	if err != nil {
		err = mapTeacherRepoError(err)
		return
	}

	teacher = persisted
	return
}

// UpdateTeacher validates input and updates an existing account for
// administrators. The password is left untouched.
func (s *TeacherService) UpdateTeacher(ctx context.Context, params UpdateTeacherParams) (teacher Teacher, err error) {
	if s == nil {
		err = fmt.Errorf("TeacherService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.teachers == nil {
		err = fmt.Errorf("teacher repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTeacher",
		"principal_id", params.Principal.TeacherID,
		"teacher_id", params.TeacherID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update teacher", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "teacher updated")
	}()

	var existing Teacher
	existing, err = s.teachers.GetTeacher(ctx, params.TeacherID)
	if err != nil {
		err = mapTeacherRepoError(err)
		return
	}

	normalized := normalizeTeacherInput(params.Input)
	vErr := validateTeacherInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Login = normalized.Login
	updated.FullName = normalized.FullName
	updated.IsAdmin = normalized.IsAdmin
	updated.UpdatedAt = s.now()

	teacher, err = s.teachers.UpdateTeacher(ctx, updated)
	if err != nil {
		err = mapTeacherRepoError(err)
		return
	}

	return
}

// DeleteTeacher removes an account when requested by an administrator.
// Cascades take the account's reservations and sessions with it.
func (s *TeacherService) DeleteTeacher(ctx context.Context, principal Principal, teacherID string) error {
	if s == nil {
		return fmt.Errorf("TeacherService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.teachers == nil {
		return fmt.Errorf("teacher repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteTeacher",
		"principal_id", principal.TeacherID,
		"teacher_id", teacherID,
	)

	if err := s.teachers.DeleteTeacher(ctx, teacherID); err != nil {
		err = mapTeacherRepoError(err)
		logger.ErrorContext(ctx, "failed to delete teacher", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "teacher deleted")
	return nil
}

// ListTeachers returns all accounts for administrators, ordered by login.
func (s *TeacherService) ListTeachers(ctx context.Context, principal Principal) (teachers []Teacher, err error) {
	if s == nil {
		err = fmt.Errorf("TeacherService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.teachers == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListTeachers",
		"principal_id", principal.TeacherID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list teachers", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(teachers)).InfoContext(ctx, "teachers listed")
	}()

	var raw []Teacher
	raw, err = s.teachers.ListTeachers(ctx)
	if err != nil {
		return
	}

	teachers = make([]Teacher, len(raw))
	copy(teachers, raw)

	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].Login == teachers[j].Login {
			return teachers[i].ID < teachers[j].ID
		}
		return teachers[i].Login < teachers[j].Login
	})

	return
}

func normalizeTeacherInput(input TeacherInput) TeacherInput {
	return TeacherInput{
		Login:    strings.ToLower(strings.TrimSpace(input.Login)),
		FullName: strings.TrimSpace(input.FullName),
		IsAdmin:  input.IsAdmin,
	}
}

func validateTeacherInput(input TeacherInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Login == "" {
		vErr.add("login", "login is required")
	} else if !loginPattern.MatchString(input.Login) {
		vErr.add("login", "login may only contain letters, digits, dots, dashes, and underscores")
	}

	return vErr
}

func mapTeacherRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/reg4rd/classroom-booking/internal/persistence"
)

// TeacherRepository implements persistence.TeacherRepository using SQLite
type TeacherRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTeacherRepository creates a new SQLite teacher repository
func NewTeacherRepository(pool *ConnectionPool) *TeacherRepository {
	return &TeacherRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTeacher inserts a new teacher account into the database
func (r *TeacherRepository) CreateTeacher(ctx context.Context, teacher persistence.Teacher) error {
	if teacher.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if teacher.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	login := normalizeLogin(teacher.Login)
	if login == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	query := `
		INSERT INTO teachers (id, login, full_name, password_hash, is_admin, disabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		teacher.ID,
		login,
		teacher.FullName,
		teacher.PasswordHash,
		teacher.IsAdmin,
		teacher.Disabled,
		teacher.CreatedAt.Format(time.RFC3339),
		teacher.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return r.mapTeacherError(err)
	}

	return nil
}

// UpdateTeacher updates an existing teacher account in the database
func (r *TeacherRepository) UpdateTeacher(ctx context.Context, teacher persistence.Teacher) error {
	if teacher.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if teacher.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	login := normalizeLogin(teacher.Login)
	if login == "" {
		return persistence.ErrConstraintViolation
	}

	teacher.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE teachers
		SET login = ?, full_name = ?, password_hash = ?, is_admin = ?, disabled = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		login,
		teacher.FullName,
		teacher.PasswordHash,
		teacher.IsAdmin,
		teacher.Disabled,
		teacher.UpdatedAt.Format(time.RFC3339),
		teacher.ID,
	)

	if err != nil {
		return r.mapTeacherError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetTeacher retrieves a teacher by ID from the database
func (r *TeacherRepository) GetTeacher(ctx context.Context, id string) (persistence.Teacher, error) {
	if id == "" {
		return persistence.Teacher{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, login, full_name, password_hash, is_admin, disabled, created_at, updated_at
		FROM teachers
		WHERE id = ?
	`

	return r.scanTeacher(r.helper.QueryRow(ctx, query, id))
}

// GetTeacherByLogin retrieves a teacher by login, case-insensitively
func (r *TeacherRepository) GetTeacherByLogin(ctx context.Context, login string) (persistence.Teacher, error) {
	login = normalizeLogin(login)
	if login == "" {
		return persistence.Teacher{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, login, full_name, password_hash, is_admin, disabled, created_at, updated_at
		FROM teachers
		WHERE login = ?
	`

	return r.scanTeacher(r.helper.QueryRow(ctx, query, login))
}

// ListTeachers returns all teachers ordered by login then ID
func (r *TeacherRepository) ListTeachers(ctx context.Context) ([]persistence.Teacher, error) {
	query := `
		SELECT id, login, full_name, password_hash, is_admin, disabled, created_at, updated_at
		FROM teachers
		ORDER BY login ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var teachers []persistence.Teacher

	for rows.Next() {
		var teacher persistence.Teacher
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&teacher.ID,
			&teacher.Login,
			&teacher.FullName,
			&teacher.PasswordHash,
			&teacher.IsAdmin,
			&teacher.Disabled,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if teacher.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if teacher.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return teachers, nil
}

// DeleteTeacher removes a teacher by ID. Reservations and sessions held
// by the teacher are removed by the cascade.
func (r *TeacherRepository) DeleteTeacher(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM teachers WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func (r *TeacherRepository) scanTeacher(row *sql.Row) (persistence.Teacher, error) {
	var teacher persistence.Teacher
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&teacher.ID,
		&teacher.Login,
		&teacher.FullName,
		&teacher.PasswordHash,
		&teacher.IsAdmin,
		&teacher.Disabled,
		&createdAtStr,
		&updatedAtStr,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Teacher{}, persistence.ErrNotFound
		}
		return persistence.Teacher{}, r.mapper.MapError(err)
	}

	if teacher.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Teacher{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if teacher.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Teacher{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return teacher, nil
}

// mapTeacherError maps SQLite errors to persistence errors for teacher operations
func (r *TeacherRepository) mapTeacherError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsAny(errStr, []string{"UNIQUE constraint failed"}) {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, []string{"CHECK constraint failed", "NOT NULL constraint failed"}) {
		return persistence.ErrConstraintViolation
	}

	return r.mapper.MapError(err)
}

// normalizeLogin lowercases and trims a login for storage and lookups
func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

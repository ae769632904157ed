package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/reg4rd/classroom-booking/internal/persistence"
)

const dayLayout = "2006-01-02"

// ReservationRepository implements persistence.ReservationRepository
// using SQLite. The UNIQUE(room_id, day, period) index makes the
// insert the single point where slot ownership is decided.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewReservationRepository creates a new SQLite reservation repository
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateReservation inserts a reservation. It returns
// persistence.ErrDuplicate when the (room, day, period) slot is
// already held.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.TeacherID == "" || reservation.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	if reservation.Day.IsZero() {
		return persistence.ErrConstraintViolation
	}

	reservation.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reservations (id, teacher_id, room_id, day, period, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		reservation.ID,
		reservation.TeacherID,
		reservation.RoomID,
		reservation.Day.Format(dayLayout),
		reservation.Period,
		reservation.CreatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return r.mapReservationError(err)
	}

	return nil
}

// SlotTaken reports whether the (room, day, period) slot is held
func (r *ReservationRepository) SlotTaken(ctx context.Context, roomID string, day time.Time, period int) (bool, error) {
	query := `SELECT 1 FROM reservations WHERE room_id = ? AND day = ? AND period = ? LIMIT 1`

	var exists int
	err := r.helper.QueryRow(ctx, query, roomID, day.Format(dayLayout), period).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, r.mapper.MapError(err)
	}

	return true, nil
}

// ListReservations returns the reservations matching filter in the
// requested order. Room name ties are broken by room ID, and full
// ties by reservation ID, so listings are deterministic.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter, order persistence.ReservationOrder) ([]persistence.Reservation, error) {
	query := `
		SELECT rs.id, rs.teacher_id, rs.room_id, rs.day, rs.period, rs.created_at
		FROM reservations rs
		JOIN rooms rm ON rm.id = rs.room_id
	`

	var conditions []string
	var args []interface{}

	if filter.Day != nil {
		conditions = append(conditions, "rs.day = ?")
		args = append(args, filter.Day.Format(dayLayout))
	}
	if filter.DayFrom != nil {
		conditions = append(conditions, "rs.day >= ?")
		args = append(args, filter.DayFrom.Format(dayLayout))
	}
	if filter.RoomID != "" {
		conditions = append(conditions, "rs.room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, "rs.teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if len(filter.Periods) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Periods))
		conditions = append(conditions, fmt.Sprintf("rs.period IN (%s)", strings.TrimSuffix(placeholders, ", ")))
		for _, period := range filter.Periods {
			args = append(args, period)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	switch order {
	case persistence.OrderByDayRoomPeriod:
		query += " ORDER BY rs.day ASC, rm.name ASC, rm.id ASC, rs.period ASC, rs.id ASC"
	default:
		query += " ORDER BY rs.day ASC, rs.period ASC, rm.name ASC, rm.id ASC, rs.id ASC"
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation

	for rows.Next() {
		var reservation persistence.Reservation
		var dayStr, createdAtStr string

		err := rows.Scan(
			&reservation.ID,
			&reservation.TeacherID,
			&reservation.RoomID,
			&dayStr,
			&reservation.Period,
			&createdAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if reservation.Day, err = time.Parse(dayLayout, dayStr); err != nil {
			return nil, fmt.Errorf("failed to parse day: %w", err)
		}
		if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return reservations, nil
}

// DeleteByOwner removes the reservations in ids that belong to
// teacherID and returns how many rows were removed. IDs held by other
// teachers or unknown IDs are silently skipped.
func (r *ReservationRepository) DeleteByOwner(ctx context.Context, ids []string, teacherID string) (int, error) {
	if len(ids) == 0 || teacherID == "" {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf("DELETE FROM reservations WHERE id IN (%s) AND teacher_id = ?", placeholders)

	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, teacherID)

	result, err := r.helper.Exec(ctx, query, args...)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// mapReservationError maps SQLite errors to persistence errors for
// reservation operations
func (r *ReservationRepository) mapReservationError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsAny(errStr, []string{"UNIQUE constraint failed"}) {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, []string{"FOREIGN KEY constraint failed", "foreign key constraint"}) {
		return persistence.ErrForeignKeyViolation
	}
	if containsAny(errStr, []string{"CHECK constraint failed", "NOT NULL constraint failed"}) {
		return persistence.ErrConstraintViolation
	}

	return r.mapper.MapError(err)
}

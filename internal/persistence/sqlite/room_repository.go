package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reg4rd/classroom-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite
type RoomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateRoom inserts a new room into the database
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Name == "" {
		return persistence.ErrConstraintViolation
	}
	if room.Capacity != nil && *room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	query := `
		INSERT INTO rooms (id, name, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		room.ID,
		room.Name,
		capacityArg(room.Capacity),
		room.CreatedAt.Format(time.RFC3339),
		room.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return r.mapRoomError(err)
	}

	return nil
}

// UpdateRoom updates an existing room in the database
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Name == "" {
		return persistence.ErrConstraintViolation
	}
	if room.Capacity != nil && *room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	room.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE rooms
		SET name = ?, capacity = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		room.Name,
		capacityArg(room.Capacity),
		room.UpdatedAt.Format(time.RFC3339),
		room.ID,
	)

	if err != nil {
		return r.mapRoomError(err)
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

// GetRoom retrieves a room by ID from the database
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms
		WHERE id = ?
	`

	var room persistence.Room
	var createdAtStr, updatedAtStr string
	var capacity sql.NullInt64

	err := r.helper.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&capacity,
		&createdAtStr,
		&updatedAtStr,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, r.mapper.MapError(err)
	}

	if capacity.Valid {
		value := int(capacity.Int64)
		room.Capacity = &value
	}

	if room.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return room, nil
}

// ListRooms returns all rooms ordered by name then ID
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms
		ORDER BY name ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room

	for rows.Next() {
		var room persistence.Room
		var createdAtStr, updatedAtStr string
		var capacity sql.NullInt64

		err := rows.Scan(
			&room.ID,
			&room.Name,
			&capacity,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if capacity.Valid {
			value := int(capacity.Int64)
			room.Capacity = &value
		}

		if room.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return rooms, nil
}

// DeleteRoom removes a room by ID. Reservations for the room are
// removed by the cascade.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM rooms WHERE id = ?", id)
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

// mapRoomError maps SQLite errors to persistence errors for room operations
func (r *RoomRepository) mapRoomError(err error) error {
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

func capacityArg(capacity *int) interface{} {
	if capacity == nil {
		return nil
	}
	return *capacity
}

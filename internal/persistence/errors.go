package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert collides with a
	// uniqueness constraint, such as an already held slot.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConstraintViolation is returned for constraint failures other
	// than uniqueness and foreign keys.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is
	// missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)

package http

import (
	"context"

	"github.com/reg4rd/classroom-booking/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	teacherIDContextKey contextKey = "teacher_id"
	roomIDContextKey    contextKey = "room_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithTeacherID injects the teacher identifier resolved from the request path.
func ContextWithTeacherID(ctx context.Context, teacherID string) context.Context {
	return context.WithValue(ctx, teacherIDContextKey, teacherID)
}

// TeacherIDFromContext extracts a teacher identifier previously associated with the context.
func TeacherIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(teacherIDContextKey).(string)
	return id, ok
}

// ContextWithRoomID injects the room identifier resolved from the request path.
func ContextWithRoomID(ctx context.Context, roomID string) context.Context {
	return context.WithValue(ctx, roomIDContextKey, roomID)
}

// RoomIDFromContext extracts a room identifier previously associated with the context.
func RoomIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(roomIDContextKey).(string)
	return id, ok
}

// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"login","password"}.
//     Response: {"token","expires_at","teacher"} with the token also surfaced
//     via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - POST /bookings: reserves one or more periods of a room on a date,
//     exchanging the payloads defined in booking_handler.go. Slots already
//     held by someone else come back in the `conflicted` list with a warning
//     message; a partially granted batch is still a 200.
//   - GET /grid: the room-by-period availability view for one date and
//     half-day session, with summary stats and the bookable date window.
//   - GET /my-schedule: the caller's upcoming reservations grouped by date,
//     room, and session.
//   - POST /bookings/cancel: removes the caller's reservations among the
//     submitted comma-joined ids; foreign ids are skipped silently.
//   - GET /rooms, POST /rooms, PUT /rooms/{id}, DELETE /rooms/{id}: room
//     catalog endpoints exchanging the `roomDTO` payload defined in
//     room_handler.go. Listing is available to any authenticated principal
//     while mutations require admin privileges.
//   - GET /teachers, POST /teachers, PUT /teachers/{id}, DELETE /teachers/{id}:
//     administrator controlled account management endpoints exchanging the
//     `teacherDTO` payload defined in teacher_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

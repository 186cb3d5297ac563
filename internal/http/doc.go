// Package http provides HTTP handlers and middleware for the attendance API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     The token is also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the caller's session token taken from
//     the Authorization header or the session cookie.
//   - DELETE /sessions/{token}: administrator revocation of any session.
//   - GET /users, POST /users, GET /users/{id}, PUT /users/{id},
//     DELETE /users/{id}: user management endpoints exchanging the `userDTO`
//     payload defined in user_handler.go. Listing, creation, and deletion are
//     administrator only; reads and updates also allow the user themselves.
//   - POST /attendance/check-in, POST /attendance/check-out,
//     POST /attendance/break/start, POST /attendance/break/end: tap style
//     stamping for the current instant. No request body.
//   - GET /attendance/today: the caller's current day summary.
//   - GET /attendance/records, POST /attendance/records: raw stored rows and
//     manual corrections exchanging the `attendanceDTO` payload defined in
//     attendance_handler.go.
//   - GET /attendance/busy-level, PUT /attendance/busy-level: self-reported
//     workload level for a day.
//   - GET /reports: period report (day, week, month, year) for one user.
//   - GET /reports/export: the same report as a CSV download.
//   - GET /reports/headcount: administrator headcount for one day.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

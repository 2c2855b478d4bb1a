// Package api implements the HTTP REST API for quickcalc-server.
//
// New(sessions, repo, saver, opts) returns an http.Handler that serves:
//
//	GET    /api/v1/health               status, live session and note counts
//	POST   /api/v1/sessions             create a calculator session (201)
//	GET    /api/v1/sessions/{id}        current calculator view
//	DELETE /api/v1/sessions/{id}        drop the session (204)
//	POST   /api/v1/sessions/{id}/input  apply one {"key"} or {"action"}
//	GET    /api/v1/notes                all notes, newest first
//	POST   /api/v1/notes                create an empty note (201)
//	GET    /api/v1/notes/{id}           one note
//	PUT    /api/v1/notes/{id}           save title and content; ?autosave=1 defers it (202)
//	DELETE /api/v1/notes/{id}           delete; returns the note to select next
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for unsupported methods and 404 for unknown ids
//   - Return 400 for malformed JSON bodies
//
// A calculator error on /input is not an HTTP failure of the request: the
// response is 422 with the error message and the unchanged calculator view,
// so clients can show the message and keep going.
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api

package api

import "github.com/quickcalc/quickcalc/pkg/types"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Notes    int    `json:"notes"`
}

// SessionResponse is the payload for session creation and lookup.
type SessionResponse struct {
	ID         string               `json:"id"`
	Calculator types.CalculatorView `json:"calculator"`
}

// InputRequest is one calculator input: a keyboard key ("7", "+", "Enter")
// or a button action ("sqrt", "m-plus", "√x"). Exactly one must be set.
// The WebSocket hub reads the same shape from client frames.
type InputRequest struct {
	Key    string `json:"key,omitempty"`
	Action string `json:"action,omitempty"`
}

// InputResponse is the payload for POST /api/v1/sessions/{id}/input.
// Error is set (with status 422) when the calculator rejected the input.
type InputResponse struct {
	Calculator types.CalculatorView `json:"calculator"`
	Error      string               `json:"error,omitempty"`
}

// NoteRequest is the body of PUT /api/v1/notes/{id}.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DeleteNoteResponse is the payload for DELETE /api/v1/notes/{id}.
// NextID is the note to select next, or 0 when none remain.
type DeleteNoteResponse struct {
	NextID int64 `json:"next_id"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

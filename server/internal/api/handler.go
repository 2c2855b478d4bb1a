package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/quickcalc/quickcalc/pkg/types"
	"github.com/quickcalc/quickcalc/server/internal/metrics"
	"github.com/quickcalc/quickcalc/server/internal/notes"
	"github.com/quickcalc/quickcalc/server/internal/store"
)

const (
	maxInputBody = 4 << 10
	maxNoteBody  = 1 << 20
)

// Options holds the optional collaborators of a Handler.
type Options struct {
	// Metrics receives input and error counts. Nil uses a private registry.
	Metrics *metrics.Registry

	// OnInput is called after every input applied through the API, with the
	// resulting view and the calculator error, if any. The server uses it to
	// push the view to WebSocket clients of the same session.
	OnInput func(sessionID string, view types.CalculatorView, err error)
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	sessions *store.Store
	notes    *notes.Repository
	saver    *notes.AutoSaver
	opts     Options
	mux      *http.ServeMux
}

// New creates a Handler over the session store, the notes repository and its
// auto-saver, and registers all routes.
func New(sessions *store.Store, repo *notes.Repository, saver *notes.AutoSaver, opts Options) http.Handler {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	h := &Handler{
		sessions: sessions,
		notes:    repo,
		saver:    saver,
		opts:     opts,
		mux:      http.NewServeMux(),
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/sessions", h.createSession)
	h.mux.HandleFunc("/api/v1/sessions/", h.session) // subtree: {id} and {id}/input
	h.mux.HandleFunc("/api/v1/notes", h.noteList)
	h.mux.HandleFunc("/api/v1/notes/", h.note) // subtree: {id}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: h.sessions.Count(),
		Notes:    h.notes.Count(),
	})
}

// createSession handles POST /api/v1/sessions.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess := h.sessions.Create()
	slog.Debug("api: session created", "session", sess.ID)
	jsonResp(w, http.StatusCreated, SessionResponse{ID: sess.ID, Calculator: sess.View()})
}

// session dispatches /api/v1/sessions/{id} and /api/v1/sessions/{id}/input.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		h.createSession(w, r)
		return
	}

	switch action {
	case "":
		h.sessionByID(w, r, id)
	case "input":
		h.input(w, r, id)
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) sessionByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sess, ok := h.sessions.Get(id)
		if !ok {
			jsonErr(w, http.StatusNotFound, "session not found")
			return
		}
		jsonResp(w, http.StatusOK, SessionResponse{ID: sess.ID, Calculator: sess.View()})
	case http.MethodDelete:
		if !h.sessions.Delete(id) {
			jsonErr(w, http.StatusNotFound, "session not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// input handles POST /api/v1/sessions/{id}/input.
func (h *Handler) input(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := h.sessions.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}

	var req InputRequest
	if err := decodeBody(w, r, maxInputBody, &req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	view, err := ApplyInput(sess, req, h.opts.Metrics, h.sessions.Now())
	if h.opts.OnInput != nil {
		h.opts.OnInput(id, view, err)
	}
	if err != nil {
		jsonResp(w, http.StatusUnprocessableEntity, InputResponse{Calculator: view, Error: err.Error()})
		return
	}
	jsonResp(w, http.StatusOK, InputResponse{Calculator: view})
}

// noteList handles GET and POST /api/v1/notes.
func (h *Handler) noteList(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, http.StatusOK, h.notes.List())
	case http.MethodPost:
		n, err := h.notes.Create()
		if err != nil {
			jsonErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		jsonResp(w, http.StatusCreated, n)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// note handles /api/v1/notes/{id}.
func (h *Handler) note(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/notes/")
	if raw == "" {
		h.noteList(w, r)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid note id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		n, ok := h.notes.Get(id)
		if !ok {
			jsonErr(w, http.StatusNotFound, "note not found")
			return
		}
		jsonResp(w, http.StatusOK, n)

	case http.MethodPut:
		var req NoteRequest
		if err := decodeBody(w, r, maxNoteBody, &req); err != nil {
			jsonErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if r.URL.Query().Get("autosave") == "1" {
			h.scheduleSave(w, id, req)
			return
		}
		n, err := h.notes.Save(id, req.Title, req.Content)
		if err != nil {
			noteErr(w, err)
			return
		}
		jsonResp(w, http.StatusOK, n)

	case http.MethodDelete:
		next, err := h.notes.Delete(id)
		if err != nil {
			noteErr(w, err)
			return
		}
		jsonResp(w, http.StatusOK, DeleteNoteResponse{NextID: next})

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// scheduleSave queues a debounced save and answers 202.
func (h *Handler) scheduleSave(w http.ResponseWriter, id int64, req NoteRequest) {
	if _, ok := h.notes.Get(id); !ok {
		jsonErr(w, http.StatusNotFound, "note not found")
		return
	}
	h.saver.Schedule(id, req.Title, req.Content)
	jsonResp(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

// --- helpers ----------------------------------------------------------------

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v)
}

func noteErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		jsonErr(w, http.StatusNotFound, "note not found")
	case errors.Is(err, notes.ErrEmptyNote):
		jsonErr(w, http.StatusUnprocessableEntity, err.Error())
	default:
		jsonErr(w, http.StatusInternalServerError, err.Error())
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

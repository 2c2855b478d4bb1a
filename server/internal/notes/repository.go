package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/quickcalc/quickcalc/pkg/types"
	"github.com/quickcalc/quickcalc/server/internal/kv"
)

// Storage keys and the title given to new or untitled notes.
const (
	StorageKey   = "notes"
	BackupKey    = "notes_backup"
	DefaultTitle = "Untitled Note"
)

var (
	ErrNotFound  = errors.New("notes: note not found")
	ErrEmptyNote = errors.New("notes: note is empty")
)

// Options configures a Repository. All fields are optional.
type Options struct {
	// Backup receives the document when writing the primary store fails.
	Backup kv.Store

	// Now is the clock used for ids and timestamps (default time.Now).
	Now func() time.Time

	// OnPersist is called after every write attempt with its result.
	OnPersist func(err error)
}

// Repository holds the notes in memory, newest first, and persists the whole
// list after every change.
//
// Repository is safe for concurrent use.
type Repository struct {
	primary kv.Store
	opts    Options

	mu    sync.Mutex
	notes []types.Note
}

// New returns an empty Repository persisting to primary. Call Load to read
// previously stored notes.
func New(primary kv.Store, opts Options) *Repository {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Repository{primary: primary, opts: opts}
}

// Load replaces the in-memory list with the stored document. A missing
// document is an empty list. Invalid entries are skipped. If the document
// cannot be decoded at all, the list is emptied and an error is returned.
func (r *Repository) Load() error {
	data, ok, err := r.primary.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("notes: load: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes = nil
	if !ok {
		return nil
	}

	notes, dropped, err := decodeNotes(data)
	if err != nil {
		return fmt.Errorf("notes: load: starting with empty notes: %w", err)
	}
	if dropped > 0 {
		slog.Warn("notes: dropped invalid entries", "count", dropped)
	}
	r.notes = notes
	slog.Info("notes: loaded", "count", len(notes))
	return nil
}

// List returns a copy of all notes, newest first.
func (r *Repository) List() []types.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// Count returns the number of notes.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

// Get returns the note with the given id.
func (r *Repository) Get(id int64) (types.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 {
		return r.notes[i], true
	}
	return types.Note{}, false
}

// Create prepends a new empty note and persists the list. The note is kept
// in memory even when persisting fails; the error is returned alongside it.
func (r *Repository) Create() (types.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Now()
	id := now.UnixMilli()
	for r.index(id) >= 0 {
		id++
	}
	n := types.Note{
		ID:           id,
		Title:        DefaultTitle,
		LastModified: now.UTC(),
	}
	r.notes = append([]types.Note{n}, r.notes...)
	return n, r.persist()
}

// Save updates the title and content of note id. Both are trimmed; if both
// end up empty the save is refused with ErrEmptyNote.
func (r *Repository) Save(id int64, title, content string) (types.Note, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" && content == "" {
		return types.Note{}, ErrEmptyNote
	}
	if title == "" {
		title = DefaultTitle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return types.Note{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	r.notes[i].Title = title
	r.notes[i].Content = content
	r.notes[i].LastModified = r.opts.Now().UTC()
	return r.notes[i], r.persist()
}

// Delete removes note id and returns the id of the note to select next: the
// first remaining note, or 0 when none are left.
func (r *Repository) Delete(id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	r.notes = append(r.notes[:i], r.notes[i+1:]...)

	var next int64
	if len(r.notes) > 0 {
		next = r.notes[0].ID
	}
	return next, r.persist()
}

// index returns the position of id, or -1. Callers hold r.mu.
func (r *Repository) index(id int64) int {
	for i := range r.notes {
		if r.notes[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the list to the primary store, falling back to the backup
// store on failure. Callers hold r.mu.
func (r *Repository) persist() error {
	notes := r.notes
	if notes == nil {
		notes = []types.Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("notes: encode: %w", err)
	}

	err = r.primary.Set(StorageKey, data)
	if r.opts.OnPersist != nil {
		r.opts.OnPersist(err)
	}
	if err == nil {
		slog.Debug("notes: saved", "count", len(notes))
		return nil
	}

	slog.Error("notes: save failed", "err", err)
	if r.opts.Backup != nil {
		if berr := r.opts.Backup.Set(BackupKey, data); berr != nil {
			slog.Error("notes: backup save failed", "err", berr)
		} else {
			slog.Warn("notes: backed up to secondary store", "key", BackupKey)
		}
	}
	return fmt.Errorf("notes: persist: %w", err)
}

// storedNote mirrors types.Note with pointer fields so that missing or
// mistyped fields can be told apart from zero values.
type storedNote struct {
	ID           *float64 `json:"id"`
	Title        *string  `json:"title"`
	Content      *string  `json:"content"`
	LastModified *string  `json:"lastModified"`
}

// decodeNotes parses a stored document, returning the valid notes and the
// number of entries dropped.
func decodeNotes(data []byte) ([]types.Note, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	out := make([]types.Note, 0, len(raw))
	dropped := 0
	for _, msg := range raw {
		n, ok := decodeNote(msg)
		if !ok {
			dropped++
			continue
		}
		out = append(out, n)
	}
	return out, dropped, nil
}

func decodeNote(msg json.RawMessage) (types.Note, bool) {
	var s storedNote
	if err := json.Unmarshal(msg, &s); err != nil {
		return types.Note{}, false
	}
	if s.ID == nil || s.Title == nil || s.Content == nil || s.LastModified == nil {
		return types.Note{}, false
	}
	if *s.ID != math.Trunc(*s.ID) || math.Abs(*s.ID) > 1<<53 {
		return types.Note{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, *s.LastModified)
	if err != nil {
		return types.Note{}, false
	}
	return types.Note{
		ID:           int64(*s.ID),
		Title:        *s.Title,
		Content:      *s.Content,
		LastModified: ts,
	}, true
}

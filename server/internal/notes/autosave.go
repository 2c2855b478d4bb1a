package notes

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultAutosaveDelay is used when NewAutoSaver is given a non-positive delay.
const DefaultAutosaveDelay = time.Second

type draft struct {
	title   string
	content string
}

// AutoSaver debounces note edits: each Schedule call replaces the pending
// draft for that note and restarts the timer, so a save runs only once the
// edits have been quiet for the full delay.
//
// AutoSaver is safe for concurrent use.
type AutoSaver struct {
	repo  *Repository
	delay time.Duration

	mu      sync.Mutex
	pending map[int64]draft
	timer   *time.Timer
	gen     uint64 // bumped on every Schedule; stale timers compare and bail out
	stopped bool
}

// NewAutoSaver returns an AutoSaver writing to repo after delay.
func NewAutoSaver(repo *Repository, delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &AutoSaver{
		repo:    repo,
		delay:   delay,
		pending: make(map[int64]draft),
	}
}

// Schedule records an edit of note id and (re)arms the debounce timer.
// After Stop, edits are saved immediately.
func (a *AutoSaver) Schedule(id int64, title, content string) {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		a.save(map[int64]draft{id: {title, content}})
		return
	}
	a.pending[id] = draft{title: title, content: content}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
	a.mu.Unlock()
}

// Pending returns the number of notes with unsaved edits.
func (a *AutoSaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Flush saves all pending edits now and returns how many were saved.
func (a *AutoSaver) Flush() int {
	a.mu.Lock()
	drafts := a.take()
	a.mu.Unlock()
	return a.save(drafts)
}

// Stop flushes pending edits and disarms the timer.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	a.stopped = true
	drafts := a.take()
	a.mu.Unlock()
	a.save(drafts)
}

func (a *AutoSaver) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	drafts := a.take()
	a.mu.Unlock()
	a.save(drafts)
}

// take detaches the pending drafts and disarms the timer. Callers hold a.mu.
func (a *AutoSaver) take() map[int64]draft {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
	drafts := a.pending
	a.pending = make(map[int64]draft)
	return drafts
}

func (a *AutoSaver) save(drafts map[int64]draft) int {
	saved := 0
	for id, d := range drafts {
		_, err := a.repo.Save(id, d.title, d.content)
		switch {
		case err == nil:
			saved++
		case errors.Is(err, ErrEmptyNote):
			slog.Debug("notes: auto-save skipped empty note", "id", id)
		default:
			slog.Warn("notes: auto-save failed", "id", id, "err", err)
		}
	}
	if saved > 0 {
		slog.Debug("notes: auto-saved", "count", saved)
	}
	return saved
}

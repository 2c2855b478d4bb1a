package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quickcalc/quickcalc/pkg/calc"
)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestCreateAndGet(t *testing.T) {
	st := New(5*time.Minute, calc.Options{})
	sess := st.Create()

	got, ok := st.Get(sess.ID)
	if !ok {
		t.Fatal("Get: expected session, got none")
	}
	if got != sess {
		t.Error("Get returned a different session")
	}
	if v := got.View(); v.Display != "0" {
		t.Errorf("fresh display: got %q, want 0", v.Display)
	}
}

func TestCreate_UniqueIDs(t *testing.T) {
	st := New(5*time.Minute, calc.Options{})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := st.Create().ID
		if len(id) != 32 {
			t.Fatalf("id length: got %d, want 32", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestGet_Missing(t *testing.T) {
	st := New(5*time.Minute, calc.Options{})
	if _, ok := st.Get("unknown"); ok {
		t.Fatal("Get on empty store: expected false, got true")
	}
}

func TestSession_Apply(t *testing.T) {
	st := New(5*time.Minute, calc.Options{})
	sess := st.Create()
	now := time.Now()

	for _, in := range []calc.Input{calc.Digit('5'), calc.Op(calc.Add), calc.Digit('3'), calc.Equals()} {
		if _, err := sess.Apply(in, now); err != nil {
			t.Fatalf("Apply(%v): %v", in, err)
		}
	}
	v := sess.View()
	if v.Display != "8" {
		t.Errorf("Display: got %q, want 8", v.Display)
	}
	if len(v.History) != 1 || v.History[0] != "5 + 3 = 8" {
		t.Errorf("History: got %q", v.History)
	}
}

func TestSession_ApplyError(t *testing.T) {
	st := New(5*time.Minute, calc.Options{})
	sess := st.Create()
	now := time.Now()
	_, _ = sess.Apply(calc.Digit('1'), now)
	_, _ = sess.Apply(calc.Op(calc.Divide), now)
	_, _ = sess.Apply(calc.Digit('0'), now)

	v, err := sess.Apply(calc.Equals(), now)
	if !errors.Is(err, calc.ErrDivisionByZero) {
		t.Fatalf("Apply: got %v, want ErrDivisionByZero", err)
	}
	if v.Display != "0" || v.Expression != "1 ÷" {
		t.Errorf("view after error: got %+v", v)
	}
}

func TestSession_UsesStoreOptions(t *testing.T) {
	st := New(5*time.Minute, calc.Options{MaxInputLength: 3})
	sess := st.Create()
	for _, d := range "12345" {
		_, _ = sess.Apply(calc.Digit(d), time.Now())
	}
	if v := sess.View(); v.Input != "123" {
		t.Errorf("Input: got %q, want 123", v.Input)
	}
}

func TestGet_ExcludesIdle(t *testing.T) {
	base := time.Now()
	st := New(5*time.Minute, calc.Options{})

	st.now = fixedClock(base.Add(-10 * time.Minute))
	old := st.Create()

	st.now = fixedClock(base)
	if _, ok := st.Get(old.ID); ok {
		t.Error("Get returned an idle session")
	}
}

func TestList_ExcludesIdle(t *testing.T) {
	base := time.Now()
	st := New(5*time.Minute, calc.Options{})

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Create()

	st.now = fixedClock(base)
	live := st.Create()

	sessions := st.List()
	if len(sessions) != 1 {
		t.Fatalf("List: got %d sessions, want 1", len(sessions))
	}
	if sessions[0].ID != live.ID {
		t.Errorf("List[0]: got %s, want %s", sessions[0].ID, live.ID)
	}
	if n := st.Count(); n != 2 {
		t.Errorf("Count: got %d, want 2 (idle not yet evicted)", n)
	}
}

func TestGet_RefreshesLastUsed(t *testing.T) {
	base := time.Now()
	st := New(5*time.Minute, calc.Options{})

	st.now = fixedClock(base)
	sess := st.Create()

	st.now = fixedClock(base.Add(4 * time.Minute))
	if _, ok := st.Get(sess.ID); !ok {
		t.Fatal("Get within TTL failed")
	}

	// 8 minutes after creation but only 4 after last use.
	st.now = fixedClock(base.Add(8 * time.Minute))
	if _, ok := st.Get(sess.ID); !ok {
		t.Error("Get after refresh: session should still be live")
	}
}

func TestEvict_RemovesIdle(t *testing.T) {
	base := time.Now()
	st := New(5*time.Minute, calc.Options{})

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Create()
	st.Create()

	st.now = fixedClock(base)
	st.Create()

	removed := st.Evict(base)
	if len(removed) != 2 {
		t.Errorf("Evict: removed %d, want 2", len(removed))
	}
	if st.Count() != 1 {
		t.Errorf("Count after evict: got %d, want 1", st.Count())
	}
}

func TestDelete(t *testing.T) {
	st := New(5*time.Minute, calc.Options{})
	sess := st.Create()
	if !st.Delete(sess.ID) {
		t.Error("Delete existing: got false")
	}
	if st.Delete(sess.ID) {
		t.Error("Delete twice: got true")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	st := New(time.Millisecond, calc.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConcurrentApply(t *testing.T) {
	st := New(5*time.Minute, calc.Options{HistoryLimit: 1000})
	sess := st.Create()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = sess.Apply(calc.Digit('1'), time.Now())
		}()
		go func() {
			defer wg.Done()
			st.Get(sess.ID)
			sess.View()
		}()
	}
	wg.Wait()
}

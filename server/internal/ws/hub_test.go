package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quickcalc/quickcalc/pkg/calc"
	"github.com/quickcalc/quickcalc/server/internal/store"
	wsHub "github.com/quickcalc/quickcalc/server/internal/ws"
)

// --- helpers ----------------------------------------------------------------

func newStore() *store.Store {
	return store.New(5*time.Minute, calc.Options{})
}

// startHub starts a test HTTP server with the hub mounted at its path prefix.
// The hub's Run loop is started with a cancellable context.
// Returns the ws:// base URL, the hub, and a cancel function.
func startHub(t *testing.T, st *store.Store) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(st, nil)
	ctx, cancelFn := context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.Handle(wsHub.PathPrefix, hub)
	srv := httptest.NewServer(mux)
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http") + wsHub.PathPrefix
	return wsURL, hub, cancelFn
}

// dial connects a WebSocket client to the session and returns the connection.
func dial(t *testing.T, wsURL, sessionID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+sessionID, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", sessionID, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) wsHub.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m wsHub.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
}

// waitCount polls hub.Count until it equals want or a second passes.
func waitCount(t *testing.T, hub *wsHub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Count: got %d, want %d", hub.Count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesImmediateView(t *testing.T) {
	st := newStore()
	sess := st.Create()
	sess.Apply(calc.Digit('7'), time.Now()) //nolint:errcheck
	wsURL, _, _ := startHub(t, st)

	conn := dial(t, wsURL, sess.ID)
	m := readMessage(t, conn)

	if m.Event != wsHub.EventCalculator {
		t.Errorf("event: got %q, want %q", m.Event, wsHub.EventCalculator)
	}
	if m.Data.Display != "7" {
		t.Errorf("display: got %q, want 7", m.Data.Display)
	}
	if m.Error != "" {
		t.Errorf("error: got %q, want empty", m.Error)
	}
}

func TestHub_InputFrames_UpdateView(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, _, _ := startHub(t, st)

	conn := dial(t, wsURL, sess.ID)
	readMessage(t, conn) // initial view

	frames := []string{`{"key":"9"}`, `{"key":"*"}`, `{"key":"9"}`, `{"key":"Enter"}`}
	var m wsHub.Message
	for _, f := range frames {
		send(t, conn, f)
		m = readMessage(t, conn)
	}
	if m.Data.Display != "81" {
		t.Errorf("display: got %q, want 81", m.Data.Display)
	}
	if got := sess.View().Display; got != "81" {
		t.Errorf("session display: got %q, want 81", got)
	}
}

func TestHub_ActionFrame(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, _, _ := startHub(t, st)

	conn := dial(t, wsURL, sess.ID)
	readMessage(t, conn)

	send(t, conn, `{"key":"5"}`)
	readMessage(t, conn)
	send(t, conn, `{"action":"x²"}`)
	if m := readMessage(t, conn); m.Data.Display != "25" {
		t.Errorf("display: got %q, want 25", m.Data.Display)
	}
}

func TestHub_CalculatorError_Reported(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, _, _ := startHub(t, st)

	conn := dial(t, wsURL, sess.ID)
	readMessage(t, conn)

	send(t, conn, `{"key":"0"}`)
	readMessage(t, conn)
	send(t, conn, `{"action":"reciprocal"}`)
	m := readMessage(t, conn)
	if m.Error != calc.ErrReciprocalOfZero.Error() {
		t.Errorf("error: got %q", m.Error)
	}
	if m.Data.Display != "0" {
		t.Errorf("display after error: got %q, want 0", m.Data.Display)
	}
}

func TestHub_InvalidFrame_RepliesToSenderOnly(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, _, _ := startHub(t, st)

	sender := dial(t, wsURL, sess.ID)
	other := dial(t, wsURL, sess.ID)
	readMessage(t, sender)
	readMessage(t, other)

	send(t, sender, `not json`)
	if m := readMessage(t, sender); m.Error == "" {
		t.Error("sender: want error message")
	}

	// The other client sees only the next real update.
	send(t, sender, `{"key":"3"}`)
	readMessage(t, sender)
	m := readMessage(t, other)
	if m.Error != "" || m.Data.Display != "3" {
		t.Errorf("other client: got %+v", m)
	}
}

func TestHub_AllSessionClientsReceiveUpdate(t *testing.T) {
	st := newStore()
	a, b := st.Create(), st.Create()
	wsURL, _, _ := startHub(t, st)

	conns := []*websocket.Conn{dial(t, wsURL, a.ID), dial(t, wsURL, a.ID)}
	bystander := dial(t, wsURL, b.ID)
	for _, c := range conns {
		readMessage(t, c)
	}
	readMessage(t, bystander)

	send(t, conns[0], `{"key":"4"}`)
	for i, c := range conns {
		if m := readMessage(t, c); m.Data.Display != "4" {
			t.Errorf("client %d: display got %q, want 4", i, m.Data.Display)
		}
	}

	// The client of another session receives nothing.
	bystander.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bystander.ReadMessage(); err == nil {
		t.Error("bystander: received a message for another session")
	}
}

func TestHub_Publish_ReachesClients(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, hub, _ := startHub(t, st)

	conn := dial(t, wsURL, sess.ID)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	view, err := sess.Apply(calc.Digit('8'), time.Now())
	hub.Publish(sess.ID, view, err)

	if m := readMessage(t, conn); m.Data.Display != "8" {
		t.Errorf("display: got %q, want 8", m.Data.Display)
	}
}

func TestHub_CountClients(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, hub, _ := startHub(t, st)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL, sess.ID)
		readMessage(t, conns[i])
	}
	waitCount(t, hub, 3)

	conns[0].Close()
	waitCount(t, hub, 2)
}

func TestHub_CloseSession(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, hub, _ := startHub(t, st)

	conn := dial(t, wsURL, sess.ID)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	hub.CloseSession(sess.ID)
	waitCount(t, hub, 0)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("want connection closed after CloseSession")
	}
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	st := newStore()
	sess := st.Create()
	wsURL, hub, cancel := startHub(t, st)

	conn := dial(t, wsURL, sess.ID)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	cancel() // signal shutdown

	// After cancel, hub should close all clients.
	waitCount(t, hub, 0)
}

func TestHub_UnknownSession_Returns404(t *testing.T) {
	hub := wsHub.New(newStore(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + wsHub.PathPrefix + "missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	st := newStore()
	sess := st.Create()
	hub := wsHub.New(st, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	// Plain HTTP GET without WebSocket upgrade headers → 400
	resp, err := http.Get(srv.URL + wsHub.PathPrefix + sess.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

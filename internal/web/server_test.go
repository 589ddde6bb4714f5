package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/footswitch/internal/bridge"
	"github.com/sweeney/footswitch/internal/logic"
	"github.com/sweeney/footswitch/internal/status"
)

func newTestTracker() *status.Tracker {
	tr := status.NewTracker(time.Now().Add(-90*time.Second), status.Config{
		PollMs:     1,
		DebounceMs: 10,
		Backend:    "fake",
		Chip:       "gpiochip0",
		Broker:     "tcp://broker:1883",
		HTTPAddr:   ":8080",
	})
	tr.Update(
		[]bridge.LineSnapshot{
			{Name: "channel", Pin: "GPIO5", Latching: true, State: logic.PulledDown, Changes: 1},
			{Name: "tap", Pin: "GPIO19", Inverted: true, State: logic.Floating},
		},
		[]bridge.SwitchSnapshot{
			{Name: "pedal1", Pin: "GPIO16", State: logic.SwitchClosed, Counts: bridge.SwitchCounts{Closed: 1}, Lines: []string{"channel", "tap"}},
		},
	)
	tr.RecordEvent(bridge.Event{Time: time.Now(), Switch: "pedal1", Edge: logic.ClosedEdge})
	return tr
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestIndexHTML(t *testing.T) {
	s := New(":0", newTestTracker())

	for _, path := range []string{"/", "/index.html"} {
		t.Run(path, func(t *testing.T) {
			w := get(t, s, path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

			body := w.Body.String()
			assert.Contains(t, body, "<title>Footswitch</title>")
			assert.Contains(t, body, `<a href="/lines/channel">channel</a>`)
			assert.Contains(t, body, "PULLED_DOWN")
			assert.Contains(t, body, "opto")
			assert.Contains(t, body, "channel, tap")
			assert.Contains(t, body, "1m 30s")
			assert.Contains(t, body, "last: pedal1 CLOSED")
			assert.Contains(t, body, "tcp://broker:1883")
		})
	}
}

func TestIndexHTML_DryRun(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{DryRun: true})
	w := get(t, New(":0", tr), "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Footswitch (dry run)")
	assert.Contains(t, w.Body.String(), "disabled")
}

func TestIndexJSON(t *testing.T) {
	w := get(t, New(":0", newTestTracker()), "/index.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var out status.StatusJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Status.Lines, 2)
	assert.Equal(t, "PULLED_DOWN", out.Status.Lines[0].State)
	assert.Equal(t, 1, out.Status.EventCount)
	assert.Equal(t, "fake", out.Status.Config.Backend)
	assert.GreaterOrEqual(t, out.Status.UptimeSeconds, int64(90))
}

func TestLineEndpoint(t *testing.T) {
	s := New(":0", newTestTracker())

	w := get(t, s, "/lines/tap")
	require.Equal(t, http.StatusOK, w.Code)

	var line status.LineJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &line))
	assert.Equal(t, status.LineJSON{
		Name:  "tap",
		Pin:   "GPIO19",
		Mode:  "momentary",
		Drive: "opto",
		State: "FLOATING",
	}, line)
}

func TestLineEndpoint_Unknown(t *testing.T) {
	w := get(t, New(":0", newTestTracker()), "/lines/wah")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown line: wah")
}

func TestUnknownPath(t *testing.T) {
	w := get(t, New(":0", newTestTracker()), "/favicon.ico")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := New(":0", newTestTracker())
	req := httptest.NewRequest(http.MethodPost, "/index.json", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(ln.Addr().String(), newTestTracker())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/index.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}

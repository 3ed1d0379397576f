package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/observability"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

type fakeEngine struct {
	mu       sync.Mutex
	rearms   int
	notified map[string]bool
}

func (e *fakeEngine) Rearm() {
	e.mu.Lock()
	e.rearms++
	e.mu.Unlock()
}

func (e *fakeEngine) Rearms() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rearms
}

func (e *fakeEngine) Running() bool          { return true }
func (e *fakeEngine) Notified(id string) bool { return e.notified[id] }
func (e *fakeEngine) NotifiedCount() int     { return len(e.notified) }

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

type fixture struct {
	srv    *httptest.Server
	store  *store.MemoryStore
	engine *fakeEngine
	hub    *AlertHub
	tasks  map[string]*task.Task
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()

	c := &task.Task{Text: "c"}
	b := &task.Task{Text: "b", DueDate: date.FromTime(now.Add(3 * time.Hour)).Ptr(), IncludeTime: true}
	a := &task.Task{Text: "a", DueDate: date.FromTime(now.Add(-10 * time.Minute)).Ptr(), IncludeTime: true}
	for _, tk := range []*task.Task{c, b, a} {
		require.NoError(t, st.Add(ctx, tk))
	}

	eng := &fakeEngine{notified: map[string]bool{b.ID: true}}
	metrics := observability.NewMetrics(observability.Namespace)
	hub := NewAlertHub(func(n int) { metrics.WSClients.Set(float64(n)) })
	api := New(st, eng, hub, metrics, nil)
	api.now = func() time.Time { return now }

	ts := httptest.NewServer(api.Router())
	t.Cleanup(ts.Close)
	return &fixture{srv: ts, store: st, engine: eng, hub: hub, tasks: map[string]*task.Task{"a": a, "b": b, "c": c}}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rdr)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, data
}

type listed struct {
	Tasks []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Countdown string `json:"countdown"`
		Overdue   bool   `json:"overdue"`
		Notified  bool   `json:"notified"`
	} `json:"tasks"`
}

func decodeList(t *testing.T, data []byte) listed {
	t.Helper()
	var out listed
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	res, data := f.do(t, http.MethodGet, "/v1/tasks", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	got := decodeList(t, data)
	require.Len(t, got.Tasks, 3)
	assert.Equal(t, "a", got.Tasks[0].Text)
	assert.Equal(t, "overdue by 10 minutes", got.Tasks[0].Countdown)
	assert.True(t, got.Tasks[0].Overdue)
	assert.Equal(t, "in 3 hours", got.Tasks[1].Countdown)
	assert.True(t, got.Tasks[1].Notified)
	assert.Empty(t, got.Tasks[2].Countdown)
}

func TestReorder(t *testing.T) {
	f := newFixture(t)
	ids := []string{f.tasks["b"].ID, f.tasks["a"].ID, f.tasks["c"].ID}

	res, data := f.do(t, http.MethodPut, "/v1/tasks/order", reorderRequest{IDs: ids})
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	got := decodeList(t, data)
	require.Len(t, got.Tasks, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{got.Tasks[0].Text, got.Tasks[1].Text, got.Tasks[2].Text})
	assert.Equal(t, 1, f.engine.Rearms())
}

func TestReorderErrors(t *testing.T) {
	f := newFixture(t)

	res, data := f.do(t, http.MethodPut, "/v1/tasks/order", reorderRequest{IDs: []string{"nope"}})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, string(data), "TASK_NOT_FOUND")

	res, _ = f.do(t, http.MethodPut, "/v1/tasks/order", reorderRequest{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = f.do(t, http.MethodPut, "/v1/tasks/order", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Zero(t, f.engine.Rearms())
}

func TestCreateToggleDelete(t *testing.T) {
	f := newFixture(t)

	res, data := f.do(t, http.MethodPost, "/v1/tasks", createTaskRequest{
		Text: "call bank", Due: "+20m", NotificationOffset: "10",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(data))
	var created struct {
		ID                 string `json:"id"`
		IncludeTime        bool   `json:"include_time"`
		NotificationOffset int    `json:"notification_offset"`
		Countdown          string `json:"countdown"`
	}
	require.NoError(t, json.Unmarshal(data, &created))
	assert.True(t, created.IncludeTime)
	assert.Equal(t, 10, created.NotificationOffset)
	assert.Equal(t, "in 20 minutes", created.Countdown)

	res, _ = f.do(t, http.MethodPost, "/v1/tasks/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	stored, err := f.store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)

	res, _ = f.do(t, http.MethodDelete, "/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res, _ = f.do(t, http.MethodGet, "/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	assert.Equal(t, 3, f.engine.Rearms())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  createTaskRequest
		code string
	}{
		{"empty text", createTaskRequest{Text: "  "}, "INVALID_INPUT"},
		{"bad due", createTaskRequest{Text: "x", Due: "someday"}, "INVALID_DATE"},
		{"bad offset", createTaskRequest{Text: "x", NotificationOffset: "soon"}, "INVALID_OFFSET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, data := f.do(t, http.MethodPost, "/v1/tasks", tt.req)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Contains(t, string(data), tt.code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	res, data := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var health map[string]any
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "memory", health["store_mode"])
	assert.Equal(t, true, health["scheduler_running"])

	res, data = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(data), `lumina_http_requests_total{code="200",route="/healthz"} 1`)
}

func TestAlertsWebsocket(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/v1/alerts/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	sent := scheduler.Notification{TaskID: f.tasks["b"].ID, Title: scheduler.NotificationTitle, Body: `"b" is due at 15:00`}
	f.hub.Alert(sent)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got scheduler.Notification
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent, got)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return f.hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/v1/alerts/ws"

	_, res, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestAlertHubDropsForSlowClients(t *testing.T) {
	var counts []int
	hub := NewAlertHub(func(n int) { counts = append(counts, n) })
	ch, unsubscribe := hub.Subscribe()

	for range clientQueueSize + 3 {
		hub.Alert(scheduler.Notification{TaskID: "x"})
	}
	assert.Len(t, ch, clientQueueSize)
	assert.Equal(t, 3, hub.Dropped())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, []int{1, 0}, counts)
}

package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-io/taskflow/internal/api/ws"
	"github.com/taskflow-io/taskflow/internal/domain"
	"github.com/taskflow-io/taskflow/internal/realtime"
	"github.com/taskflow-io/taskflow/internal/server/middleware"
)

// memoryBus is an in-process realtime.Bus for tests.
type memoryBus struct {
	mu       sync.Mutex
	channels map[string][]chan []byte
}

func newMemoryBus() *memoryBus {
	return &memoryBus{channels: make(map[string][]chan []byte)}
}

func (b *memoryBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.channels[channel] {
		ch <- payload
	}
	return nil
}

func (b *memoryBus) Subscribe(_ context.Context, channel string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 256)

	b.mu.Lock()
	b.channels[channel] = append(b.channels[channel], ch)
	b.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.channels[channel]
			for i, sub := range subs {
				if sub == ch {
					b.channels[channel] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}

	return ch, cleanup, nil
}

// stubTasks records applied status changes keyed by task id. Tasks not seeded
// via add are unknown and rejected.
type stubTasks struct {
	mu       sync.Mutex
	boards   map[int64]int64
	statuses map[int64]domain.TaskStatus
}

func newStubTasks() *stubTasks {
	return &stubTasks{
		boards:   make(map[int64]int64),
		statuses: make(map[int64]domain.TaskStatus),
	}
}

func (s *stubTasks) add(taskID, boardID int64, status domain.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[taskID] = boardID
	s.statuses[taskID] = status
}

func (s *stubTasks) status(taskID int64) domain.TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[taskID]
}

func (s *stubTasks) UpdateStatus(_ context.Context, boardID, id int64, status domain.TaskStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boards[id] != boardID {
		return domain.ErrNotFound
	}
	s.statuses[id] = status
	return nil
}

type stubAuthz struct {
	allowed bool
}

func (a *stubAuthz) CanAccess(context.Context, int64, int64) (bool, error) {
	return a.allowed, nil
}

// newTestServer mounts the board session handler the way the server does,
// with the authenticated user injected directly.
func newTestServer(t *testing.T, tasks ws.TaskStore, authz ws.Authorizer) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := realtime.NewHub(ctx, newMemoryBus())
	handler := ws.NewHandler(hub, tasks, authz)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserID, int64(1))))
		})
	})
	r.Get("/ws/boards/{boardID}", handler.ServeBoard)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func dialBoard(t *testing.T, srv *httptest.Server, board string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/boards/" + board
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })

	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(frame)))
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestServeBoard_StatusChangeFansOut(t *testing.T) {
	t.Parallel()

	tasks := newStubTasks()
	tasks.add(42, 7, domain.TaskStatusTodo)
	srv := newTestServer(t, tasks, &stubAuthz{allowed: true})

	first := dialBoard(t, srv, "7")
	second := dialBoard(t, srv, "7")
	other := dialBoard(t, srv, "9")

	sendFrame(t, first, `{"task_id": 42, "action": "update_status", "status": "DONE"}`)

	want := map[string]any{
		"type":    "task_update",
		"task_id": float64(42),
		"action":  "update_status",
		"status":  "DONE",
	}

	// Both board-7 sessions receive the event, the sender included.
	assert.Equal(t, want, readEvent(t, first))
	assert.Equal(t, want, readEvent(t, second))

	assert.Equal(t, domain.TaskStatusDone, tasks.status(42))

	// The board-9 session must not see board-7 traffic.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, _, err := other.Read(ctx)
	require.Error(t, err, "board 9 received an event for board 7")
}

func TestServeBoard_InvalidIntentIsDropped(t *testing.T) {
	t.Parallel()

	tasks := newStubTasks()
	tasks.add(42, 7, domain.TaskStatusTodo)
	srv := newTestServer(t, tasks, &stubAuthz{allowed: true})

	conn := dialBoard(t, srv, "7")

	// None of these produce an event, a mutation, or a close.
	sendFrame(t, conn, `{"task_id": 42, "action": "update_status", "status": "CANCELLED"}`)
	sendFrame(t, conn, `{"task_id": 42, "action": "delete"}`)
	sendFrame(t, conn, `not json at all`)
	sendFrame(t, conn, `{"task_id": 999, "action": "update_status", "status": "DONE"}`)

	// A valid intent afterwards still works, proving the session stayed open
	// and the invalid frames were skipped in order.
	sendFrame(t, conn, `{"task_id": 42, "action": "update_status", "status": "IN_PROGRESS"}`)

	event := readEvent(t, conn)
	assert.Equal(t, "IN_PROGRESS", event["status"])
	assert.Equal(t, float64(42), event["task_id"])

	assert.Equal(t, domain.TaskStatusInProgress, tasks.status(42))
	assert.Equal(t, domain.TaskStatus(""), tasks.status(999))
}

func TestServeBoard_RejectsUnauthorizedBoard(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubTasks(), &stubAuthz{allowed: false})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/boards/7"
	conn, resp, err := websocket.Dial(ctx, url, nil) //nolint:bodyclose
	require.Error(t, err)
	if conn != nil {
		_ = conn.CloseNow()
	}
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServeBoard_RejectsBadBoardID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubTasks(), &stubAuthz{allowed: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/boards/not-a-number"
	conn, resp, err := websocket.Dial(ctx, url, nil) //nolint:bodyclose
	require.Error(t, err)
	if conn != nil {
		_ = conn.CloseNow()
	}
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeBoard_DisconnectLeavesGroup(t *testing.T) {
	t.Parallel()

	tasks := newStubTasks()
	tasks.add(42, 7, domain.TaskStatusTodo)
	srv := newTestServer(t, tasks, &stubAuthz{allowed: true})

	staying := dialBoard(t, srv, "7")
	leaving := dialBoard(t, srv, "7")

	require.NoError(t, leaving.Close(websocket.StatusNormalClosure, ""))

	// The remaining session keeps receiving events after the peer left.
	sendFrame(t, staying, `{"task_id": 42, "action": "update_status", "status": "REVIEW"}`)
	event := readEvent(t, staying)
	assert.Equal(t, "REVIEW", event["status"])
}

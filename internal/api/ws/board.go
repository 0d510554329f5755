package ws

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/taskflow-io/taskflow/internal/domain"
	"github.com/taskflow-io/taskflow/internal/realtime"
	"github.com/taskflow-io/taskflow/internal/server/middleware"
)

// storeTimeout bounds the status-update call so a stalled store cannot wedge
// a session. A timed-out intent is dropped like any other failed one.
const storeTimeout = 5 * time.Second

// TaskStore is the slice of the task repository a session needs to apply
// status-change intents. *postgres.TaskRepo satisfies it.
type TaskStore interface {
	UpdateStatus(ctx context.Context, boardID, id int64, status domain.TaskStatus) error
}

// Authorizer answers whether a user may open a session on a board.
// *postgres.BoardRepo satisfies it.
type Authorizer interface {
	CanAccess(ctx context.Context, userID, boardID int64) (bool, error)
}

// Handler serves WebSocket board sessions.
type Handler struct {
	hub   *realtime.Hub
	tasks TaskStore
	authz Authorizer
}

func NewHandler(hub *realtime.Hub, tasks TaskStore, authz Authorizer) *Handler {
	return &Handler{hub: hub, tasks: tasks, authz: authz}
}

// ServeBoard handles one WebSocket connection on /ws/boards/{boardID}. The
// board id is fixed at connect time for the life of the session. Inbound
// status-change intents are applied to the store and broadcast to every
// subscriber of the board, including this one.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	boardID, err := strconv.ParseInt(chi.URLParam(r, "boardID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	allowed, err := h.authz.CanAccess(r.Context(), userID, boardID)
	if err != nil {
		log.Error().Err(err).Int64("board_id", boardID).Msg("websocket access check")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !allowed {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	sub, err := h.hub.Join(boardID)
	if err != nil {
		log.Error().Err(err).Int64("board_id", boardID).Msg("websocket join")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	// The deferred leave is the single teardown path for membership, no
	// matter how the session ends.
	defer h.hub.Leave(sub)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer: relays this subscriber's events to the peer. A write failure
	// ends only this session.
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, msgOK := <-sub.Events():
				if !msgOK {
					return
				}
				if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
					log.Debug().Err(writeErr).Int64("board_id", boardID).Msg("websocket write")
					return
				}
			}
		}
	}()

	// Read loop: frames from one connection are handled strictly in order.
	for {
		_, data, readErr := conn.Read(ctx)
		if readErr != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		}
		h.handleFrame(ctx, boardID, data)
	}
}

// handleFrame decodes and applies one inbound intent. Invalid frames,
// unknown actions and rejected updates are dropped without a reply; the
// sender learns of success by receiving the broadcast event like everyone
// else.
func (h *Handler) handleFrame(ctx context.Context, boardID int64, data []byte) {
	intent, err := realtime.DecodeIntent(data)
	if err != nil {
		log.Debug().Err(err).Int64("board_id", boardID).Msg("dropping undecodable frame")
		return
	}

	if intent.Action != realtime.ActionUpdateStatus {
		log.Debug().Str("action", intent.Action).Msg("dropping unknown action")
		return
	}

	status := domain.TaskStatus(intent.Status)
	if !status.Valid() {
		log.Debug().Str("status", intent.Status).Int64("task_id", intent.TaskID).Msg("dropping invalid status")
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := h.tasks.UpdateStatus(storeCtx, boardID, intent.TaskID, status); err != nil {
		// Unknown task or store failure: no mutation happened, so nothing is
		// broadcast.
		log.Debug().Err(err).Int64("task_id", intent.TaskID).Msg("status update rejected")
		return
	}

	payload, err := realtime.NewTaskUpdate(intent.TaskID, status).Encode()
	if err != nil {
		log.Error().Err(err).Msg("encode task event")
		return
	}

	if err := h.hub.Broadcast(ctx, boardID, payload); err != nil {
		log.Error().Err(err).Int64("board_id", boardID).Msg("broadcast failed")
	}
}

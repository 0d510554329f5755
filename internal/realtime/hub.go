package realtime

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Bus is the publish/subscribe transport events travel over. Satisfied by
// the Redis pub/sub store; tests substitute an in-memory implementation.
// Routing all events through the bus keeps subscribers on other nodes
// coherent with local ones.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub fans board events out to every subscriber of that board. One relay
// goroutine per active board reads the board's bus channel and delivers to
// local subscribers, so events for a board reach all members in publish
// order.
type Hub struct {
	bus      Bus
	registry *Registry
	baseCtx  context.Context

	mu     sync.Mutex
	relays map[int64]*relay
}

type relay struct {
	cancel  context.CancelFunc
	cleanup func()
}

// NewHub creates a hub whose relay subscriptions live until ctx is done.
func NewHub(ctx context.Context, bus Bus) *Hub {
	return &Hub{
		bus:      bus,
		registry: NewRegistry(),
		baseCtx:  ctx,
		relays:   make(map[int64]*relay),
	}
}

// Join registers a new subscriber for the board and returns its handle.
// The first subscriber of a board starts the board's relay.
func (h *Hub) Join(boardID int64) (*Subscriber, error) {
	sub := &Subscriber{
		id:      uuid.New(),
		boardID: boardID,
		events:  make(chan []byte, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.relays[boardID]; !ok {
		relayCtx, cancel := context.WithCancel(h.baseCtx)

		messages, cleanup, err := h.bus.Subscribe(relayCtx, BoardChannel(boardID))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("realtime.Hub.Join: %w", err)
		}

		h.relays[boardID] = &relay{cancel: cancel, cleanup: cleanup}
		go h.relayLoop(boardID, messages)
	}

	h.registry.Join(boardID, sub)

	return sub, nil
}

// Leave removes the subscriber from its board group. The last leave of a
// board stops the board's relay. Safe to call for an already-removed
// subscriber.
func (h *Hub) Leave(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := h.registry.Leave(sub.boardID, sub)
	if remaining == 0 {
		if rl, ok := h.relays[sub.boardID]; ok {
			rl.cancel()
			rl.cleanup()
			delete(h.relays, sub.boardID)
		}
	}
}

// Broadcast publishes an encoded event to the board's channel. Local
// subscribers receive it through the relay, in the same order it was
// published.
func (h *Hub) Broadcast(ctx context.Context, boardID int64, payload []byte) error {
	if err := h.bus.Publish(ctx, BoardChannel(boardID), payload); err != nil {
		return fmt.Errorf("realtime.Hub.Broadcast: %w", err)
	}
	return nil
}

// Count returns the number of subscribers currently joined to the board.
func (h *Hub) Count(boardID int64) int {
	return h.registry.Count(boardID)
}

// relayLoop delivers each bus message to a snapshot of the board's current
// members. Delivery per member is non-blocking: a subscriber whose queue is
// full (slow or already tearing down) is skipped without affecting the rest.
func (h *Hub) relayLoop(boardID int64, messages <-chan []byte) {
	for msg := range messages {
		for _, sub := range h.registry.Members(boardID) {
			select {
			case sub.events <- msg:
			default:
				log.Warn().
					Int64("board_id", boardID).
					Str("subscriber_id", sub.id.String()).
					Msg("dropping event for slow subscriber")
			}
		}
	}
}

// BoardChannel returns the bus channel name for a board group.
func BoardChannel(boardID int64) string {
	return "board_" + strconv.FormatInt(boardID, 10)
}

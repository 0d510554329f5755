package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is the outbound queue depth per connection. Events beyond
// this are dropped for that subscriber only.
const subscriberBuffer = 64

// Subscriber is one live connection's handle within a board group. It is
// owned by the connection that created it; the registry only holds a
// reference for delivery.
type Subscriber struct {
	id      uuid.UUID
	boardID int64
	events  chan []byte
}

// ID returns the subscriber's opaque identifier (used for logging).
func (s *Subscriber) ID() uuid.UUID { return s.id }

// BoardID returns the board group this subscriber belongs to.
func (s *Subscriber) BoardID() int64 { return s.boardID }

// Events returns the subscriber's outbound event stream.
func (s *Subscriber) Events() <-chan []byte { return s.events }

// Registry tracks, per board, the set of currently connected subscribers.
// All operations are safe for concurrent use and total: joining twice or
// leaving an absent subscriber are no-ops.
type Registry struct {
	mu     sync.RWMutex
	groups map[int64]map[*Subscriber]struct{}
}

func NewRegistry() *Registry {
	return &Registry{groups: make(map[int64]map[*Subscriber]struct{})}
}

// Join adds sub to the board's group, creating the group if absent.
// Returns the group size after the join.
func (r *Registry) Join(boardID int64, sub *Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[boardID]
	if !ok {
		group = make(map[*Subscriber]struct{})
		r.groups[boardID] = group
	}
	group[sub] = struct{}{}

	return len(group)
}

// Leave removes sub from the board's group. Empty groups are pruned.
// Returns the group size after the removal.
func (r *Registry) Leave(boardID int64, sub *Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[boardID]
	if !ok {
		return 0
	}
	delete(group, sub)
	if len(group) == 0 {
		delete(r.groups, boardID)
		return 0
	}

	return len(group)
}

// Members returns a snapshot of the board's current subscribers. Membership
// may change concurrently with delivery; callers must tolerate that.
func (r *Registry) Members(boardID int64) []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.groups[boardID]
	members := make([]*Subscriber, 0, len(group))
	for sub := range group {
		members = append(members, sub)
	}

	return members
}

// Count returns the number of subscribers currently in the board's group.
func (r *Registry) Count(boardID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.groups[boardID])
}

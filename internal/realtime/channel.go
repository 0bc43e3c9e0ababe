package realtime

import (
	"context"
	"sync"
)

// Channel is a persistent push-event connection scoped to one authenticated
// session. Implementations register the user identity on connect, maintain
// auction room membership across reconnects, and deliver decoded events on
// Events(). There is one Channel per session: torn down on logout, recreated
// on login.
type Channel interface {
	Connect(ctx context.Context) error
	Events() <-chan Event
	JoinAuction(ctx context.Context, auctionID string) error
	LeaveAuction(ctx context.Context, auctionID string) error
	Close(ctx context.Context) error
}

// Credentials identify the session a channel belongs to.
type Credentials struct {
	UserID string
	Token  string
}

// roomSet tracks joined auction rooms so a transport can re-subscribe after
// a reconnect; missed events are not replayed, the stores refetch instead.
type roomSet struct {
	mu    sync.Mutex
	rooms map[string]struct{}
}

func newRoomSet() *roomSet {
	return &roomSet{rooms: make(map[string]struct{})}
}

func (r *roomSet) add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[id] = struct{}{}
}

func (r *roomSet) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

func (r *roomSet) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		out = append(out, id)
	}
	return out
}

// Package relay implements the realtime room registry: an owned,
// lock-protected map from room id to the set of connected subscribers,
// created at server start and injected into whatever delivers messages.
package relay

import (
	"log/slog"
	"sync"

	"spontimeet/internal/domain"
)

type room struct {
	mu     sync.Mutex // serializes fan-out per room
	subs   map[domain.RoomSubscriber]struct{}
	closed bool // set when the last subscriber leaves and the room is removed
}

// Registry maps room ids to subscriber sets. Rooms are created lazily on
// first subscription and discarded when the last subscriber leaves.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*room
}

// NewRegistry returns an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		rooms:  make(map[string]*room),
	}
}

var _ domain.RoomRelay = (*Registry)(nil)

// Subscribe adds sub to the room's set. Subscribing twice is a no-op.
//
// The registry lock is never held while waiting on a room lock: a slow
// delivery in one room must not stall subscriptions anywhere else.
func (reg *Registry) Subscribe(roomID string, sub domain.RoomSubscriber) {
	for {
		reg.mu.Lock()
		rm, ok := reg.rooms[roomID]
		if !ok {
			rm = &room{subs: make(map[domain.RoomSubscriber]struct{})}
			reg.rooms[roomID] = rm
		}
		reg.mu.Unlock()

		rm.mu.Lock()
		if rm.closed {
			// Lost a race with the last unsubscribe tearing the room
			// down; the map no longer holds this room, so look it up
			// again.
			rm.mu.Unlock()
			continue
		}
		rm.subs[sub] = struct{}{}
		rm.mu.Unlock()
		return
	}
}

// Unsubscribe removes sub from the room's set. Unsubscribing an absent
// subscriber or room is a no-op. The last subscriber out closes the room.
func (reg *Registry) Unsubscribe(roomID string, sub domain.RoomSubscriber) {
	reg.mu.RLock()
	rm, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.subs, sub)
	if len(rm.subs) > 0 {
		rm.mu.Unlock()
		return
	}
	rm.closed = true
	rm.mu.Unlock()

	reg.mu.Lock()
	if reg.rooms[roomID] == rm {
		delete(reg.rooms, roomID)
	}
	reg.mu.Unlock()
}

// Publish delivers msg to every subscriber currently in the room and
// returns how many deliveries succeeded. A failed delivery detaches that
// subscriber and is non-fatal to the publish: the client recovers the
// message from history on reconnect. Publishes to the same room are
// serialized; different rooms proceed in parallel.
func (reg *Registry) Publish(roomID string, msg *domain.MessageWithSender) int {
	reg.mu.RLock()
	rm, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if !ok {
		return 0
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	delivered := 0
	for sub := range rm.subs {
		if err := sub.Deliver(msg); err != nil {
			reg.logger.Warn("dropping room subscriber after failed delivery",
				"room", roomID, "err", err)
			delete(rm.subs, sub)
			continue
		}
		delivered++
	}
	return delivered
}

// RoomSize returns the number of subscribers currently in the room.
func (reg *Registry) RoomSize(roomID string) int {
	reg.mu.RLock()
	rm, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.subs)
}

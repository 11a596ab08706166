package app

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
	"github.com/hububba/hubcalls/internal/metrics"
)

// Relay forwards an opaque signaling payload to the connection currently
// holding a display name in a room. The payload is never inspected; the
// negotiation semantics belong to the endpoints. An unresolvable target
// is an expected race (the peer just left), not an error.
func (c *Coordinator) Relay(kind string, room domain.RoomName, to string, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.rooms[room]
	if r == nil {
		return
	}
	m := r.Members[to]
	if m == nil {
		return
	}
	c.tr.Emit(m.Conn, kind, payload)
	metrics.SignalsRelayed.WithLabelValues(kind).Inc()
}

// ScreenShare fans a share-state change out to the rest of the room.
// Gated on the sender actually holding the claimed identity.
func (c *Coordinator) ScreenShare(id domain.ConnID, room domain.RoomName, user string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.conns[id]
	if !ok || b.Room != room || b.User != user {
		return
	}
	c.tr.BroadcastExcept(room, id, core.EvtScreenShare, core.ScreenShare{User: user, Active: active})
}

// ChatSend appends a user message and fans it out, provided the sender is
// a current member of the named room. Anything else is dropped silently.
func (c *Coordinator) ChatSend(id domain.ConnID, room domain.RoomName, user, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	text = domain.Truncate(text, c.opts.ChatMaxLen)

	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.conns[id]
	if !ok || b.Room != room || b.User != user {
		return
	}
	r := c.rooms[room]
	if r == nil {
		return
	}
	m := r.Members[user]
	if m == nil || m.Conn != id {
		return
	}
	if !c.chat.Allow(string(room)+"/"+user, c.now()) {
		log.Warn().Str("module", "app.coordinator").
			Str("room", string(room)).Str("user", user).
			Msg("chat rate limited")
		return
	}
	c.appendChatLocked(r, domain.KindUser, user, text)
	metrics.ChatMessages.Inc()
}

// SendRooms delivers the rooms snapshot to one requester.
func (c *Coordinator) SendRooms(id domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tr.Emit(id, core.EvtRoomsUpdate, c.snapshotLocked())
}

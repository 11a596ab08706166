package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
	"github.com/hububba/hubcalls/internal/metrics"
)

// Heartbeat refreshes the last-seen timestamp of the member bound to a
// connection. Unregistered connections are a silent no-op: the member was
// already cleaned up and the client will learn on its next join.
func (c *Coordinator) Heartbeat(id domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.memberOfLocked(id)
	if m == nil {
		return
	}
	m.LastSeen = c.now()
	m.Connected = true
}

// Leave removes the member bound to a connection immediately.
func (c *Coordinator) Leave(id domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.conns[id]
	if !ok {
		return
	}
	c.leaveLocked(id, b.User+" left")
	c.broadcastRoomsLocked()
}

// Disconnect does not remove the member. It freezes last-seen at the drop
// time and schedules a grace check, so a reconnect or heartbeat within
// the window keeps membership continuity.
func (c *Coordinator) Disconnect(id domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.memberOfLocked(id)
	if m == nil {
		return
	}
	m.LastSeen = c.now()
	m.Connected = false
	log.Info().Str("module", "app.coordinator").
		Str("conn", string(id)).Str("user", m.Name).Dur("grace", c.opts.Grace).
		Msg("disconnected, grace scheduled")
	c.schedule(c.opts.Grace, func() { c.graceExpire(id) })
}

// graceExpire fires once per disconnect. It re-validates everything at
// fire time instead of trusting a captured snapshot: a superseded binding
// or a refreshed last-seen makes it a no-op, which is what makes repeated
// disconnect/reconnect cycles produce no duplicate departures.
func (c *Coordinator) graceExpire(id domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.conns[id]
	if !ok {
		return // superseded: rejoined under a new connection, or removed
	}
	r := c.rooms[b.Room]
	if r == nil {
		delete(c.conns, id)
		return
	}
	m := r.Members[b.User]
	if m == nil || m.Conn != id {
		delete(c.conns, id)
		return
	}
	if c.now().Sub(m.LastSeen) < c.opts.Grace {
		return // refreshed in the interim
	}
	metrics.GraceExpiries.Inc()
	log.Info().Str("module", "app.coordinator").
		Str("room", string(b.Room)).Str("user", b.User).
		Msg("grace expired, finalizing departure")
	c.dropLocked(r, m, b.User+" disconnected")
	c.broadcastRoomsLocked()
}

// Kick removes a member at the room owner's request.
func (c *Coordinator) Kick(id domain.ConnID, roomRaw, targetRaw string) error {
	roomName, err := domain.CleanName(roomRaw, domain.MaxRoomNameLen)
	if err != nil {
		return err
	}
	target, err := domain.CleanName(targetRaw, domain.MaxDisplayNameLen)
	if err != nil {
		return err
	}
	room := domain.RoomName(roomName)

	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.conns[id]
	if !ok || b.Room != room {
		return domain.ErrUnauthorized
	}
	r := c.rooms[room]
	if r == nil || r.Owner != b.User {
		return domain.ErrUnauthorized
	}
	if target == b.User {
		return fmt.Errorf("cannot kick yourself: %w", domain.ErrInvalidInput)
	}
	m := r.Members[target]
	if m == nil {
		return domain.ErrNotFound
	}

	c.tr.Emit(m.Conn, core.EvtKicked, core.Kicked{
		Room:   room,
		By:     b.User,
		Reason: "removed by the room owner",
	})
	c.tr.Kill(m.Conn)
	metrics.KicksTotal.Inc()
	log.Info().Str("module", "app.coordinator").
		Str("room", string(room)).Str("by", b.User).Str("target", target).
		Msg("kicked")
	c.dropLocked(r, m, fmt.Sprintf("%s removed %s", b.User, target))
	c.broadcastRoomsLocked()
	return nil
}

// leaveLocked performs the shared removal path for an explicit leave or a
// room switch. Removal only applies when the connection is still the
// member's current one; stale bindings are pruned without touching the
// member.
func (c *Coordinator) leaveLocked(id domain.ConnID, sysText string) {
	b, ok := c.conns[id]
	if !ok {
		return
	}
	r := c.rooms[b.Room]
	if r == nil {
		delete(c.conns, id)
		c.tr.Unsubscribe(id)
		return
	}
	m := r.Members[b.User]
	if m == nil || m.Conn != id {
		delete(c.conns, id)
		c.tr.Unsubscribe(id)
		return
	}
	c.dropLocked(r, m, sysText)
}

// memberOfLocked resolves a connection to its member, treating the
// registry strictly as a secondary index: a binding whose member has
// moved on is pruned, never trusted.
func (c *Coordinator) memberOfLocked(id domain.ConnID) *domain.Member {
	b, ok := c.conns[id]
	if !ok {
		return nil
	}
	r := c.rooms[b.Room]
	if r == nil {
		delete(c.conns, id)
		return nil
	}
	m := r.Members[b.User]
	if m == nil || m.Conn != id {
		delete(c.conns, id)
		return nil
	}
	return m
}

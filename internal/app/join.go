package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
	"github.com/hububba/hubcalls/internal/metrics"
)

// Join binds a connection to a display name in a room.
//
// Duplicate-name arbitration, in priority order: a join from the
// connection that already holds the name is a refresh; a holder whose
// transport is gone (disconnect pending grace) is the same identity
// lineage reconnecting and is rebound in place, keeping its join
// seniority; a forced join or a holder silent past the stale threshold
// evicts; otherwise the join fails with ErrNameConflict and no state
// changes.
func (c *Coordinator) Join(id domain.ConnID, roomRaw, userRaw string, force bool) error {
	roomName, err := domain.CleanName(roomRaw, domain.MaxRoomNameLen)
	if err != nil {
		metrics.JoinsTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("room: %w", err)
	}
	user, err := domain.CleanName(userRaw, domain.MaxDisplayNameLen)
	if err != nil {
		metrics.JoinsTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("user: %w", err)
	}
	room := domain.RoomName(roomName)

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	// A connection switching rooms leaves its old room first.
	if b, ok := c.conns[id]; ok && (b.Room != room || b.User != user) {
		c.leaveLocked(id, b.User+" left")
	}

	r := c.rooms[room]
	if r != nil {
		if existing := r.Members[user]; existing != nil && existing.Conn != id {
			switch {
			case !existing.Connected:
				// Holder's transport already dropped: seamless reconnect
				// under a new connection id. The old id's grace check will
				// find its binding superseded and abort.
				delete(c.conns, existing.Conn)
				c.tr.Unsubscribe(existing.Conn)
				log.Info().Str("module", "app.coordinator").
					Str("room", string(room)).Str("user", user).
					Str("old_conn", string(existing.Conn)).Str("conn", string(id)).
					Msg("rebound after disconnect")
			case force || now.Sub(existing.LastSeen) >= c.opts.Stale:
				cause := "stale"
				if force {
					cause = "force"
				}
				metrics.EvictionsTotal.WithLabelValues(cause).Inc()
				c.tr.Emit(existing.Conn, core.EvtKicked, core.Kicked{
					Room:   room,
					Reason: "session replaced",
				})
				c.tr.Kill(existing.Conn)
				delete(c.conns, existing.Conn)
				c.tr.Unsubscribe(existing.Conn)
				delete(r.Members, user)
				log.Info().Str("module", "app.coordinator").
					Str("room", string(room)).Str("user", user).Str("cause", cause).
					Msg("evicted duplicate name holder")
			default:
				metrics.JoinsTotal.WithLabelValues("conflict").Inc()
				return domain.ErrNameConflict
			}
		}
	}

	if r == nil {
		r = domain.NewRoom(room, now, c.opts.ChatHighWater, c.opts.ChatLowWater)
		c.rooms[room] = r
	}

	m := r.Members[user]
	fresh := m == nil
	if fresh {
		m = &domain.Member{Name: user, JoinedAt: now}
		r.Members[user] = m
	}
	m.Conn = id
	m.LastSeen = now
	m.Connected = true
	c.conns[id] = binding{Room: room, User: user}
	c.tr.Subscribe(id, room)

	if fresh {
		c.appendChatLocked(r, domain.KindSystem, "", user+" joined")
	}
	c.electOwnerLocked(r)

	// Tell peers to initiate their connections toward the newcomer.
	c.tr.BroadcastExcept(room, id, core.EvtReady, core.Ready{User: user})

	c.tr.Emit(id, core.EvtJoined, core.Joined{
		Room:       room,
		Created:    r.Created.Unix(),
		Users:      memberNames(r),
		Owner:      r.Owner,
		Chat:       r.Chat.Tail(c.opts.ChatTail),
		ICEServers: c.opts.ICEServers,
	})

	c.updateGaugesLocked()
	c.broadcastRoomsLocked()
	metrics.JoinsTotal.WithLabelValues("ok").Inc()
	log.Info().Str("module", "app.coordinator").
		Str("room", string(room)).Str("user", user).Str("conn", string(id)).
		Bool("fresh", fresh).Msg("joined")
	return nil
}

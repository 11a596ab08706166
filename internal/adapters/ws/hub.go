// Package ws is the websocket transport: it owns socket lifecycles and
// implements the fan-out surface the coordinator emits through.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
	"github.com/hububba/hubcalls/internal/metrics"
)

// sender is the per-connection outbound endpoint the hub fans out to.
type sender interface {
	TrySend(core.Frame) error
	Close()
}

// envelope is the wire format in both directions: a named event plus its
// payload object.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub tracks open connections and their room subscriptions. It is the
// transport-side index only; the coordinator is the authority on
// membership.
type Hub struct {
	mu     sync.RWMutex
	conns  map[domain.ConnID]sender
	roomOf map[domain.ConnID]domain.RoomName
	rooms  map[domain.RoomName]map[domain.ConnID]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[domain.ConnID]sender),
		roomOf: make(map[domain.ConnID]domain.RoomName),
		rooms:  make(map[domain.RoomName]map[domain.ConnID]struct{}),
	}
}

func (h *Hub) add(id domain.ConnID, s sender) {
	h.mu.Lock()
	h.conns[id] = s
	h.mu.Unlock()
	metrics.ConnectionsActive.Inc()
}

func (h *Hub) remove(id domain.ConnID) {
	h.mu.Lock()
	if _, ok := h.conns[id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, id)
	h.dropFromRoomLocked(id)
	h.mu.Unlock()
	metrics.ConnectionsActive.Dec()
}

func (h *Hub) dropFromRoomLocked(id domain.ConnID) {
	room, ok := h.roomOf[id]
	if !ok {
		return
	}
	delete(h.roomOf, id)
	if set := h.rooms[room]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) Emit(to domain.ConnID, event string, payload any) {
	h.mu.RLock()
	s := h.conns[to]
	h.mu.RUnlock()
	if s == nil {
		return
	}
	h.deliver(to, s, event, payload)
}

func (h *Hub) Broadcast(room domain.RoomName, event string, payload any) {
	h.fanOut(room, "", event, payload)
}

func (h *Hub) BroadcastExcept(room domain.RoomName, except domain.ConnID, event string, payload any) {
	h.fanOut(room, except, event, payload)
}

func (h *Hub) fanOut(room domain.RoomName, except domain.ConnID, event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		if id == except {
			continue
		}
		if s := h.conns[id]; s != nil {
			targets = append(targets, target{id, s})
		}
	}
	h.mu.RUnlock()
	for _, t := range targets {
		h.send(t.id, t.s, event, frame)
	}
}

func (h *Hub) EmitAll(event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.conns))
	for id, s := range h.conns {
		targets = append(targets, target{id, s})
	}
	h.mu.RUnlock()
	for _, t := range targets {
		h.send(t.id, t.s, event, frame)
	}
}

func (h *Hub) Subscribe(id domain.ConnID, room domain.RoomName) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[id]; !ok {
		return
	}
	h.dropFromRoomLocked(id)
	h.roomOf[id] = room
	set := h.rooms[room]
	if set == nil {
		set = make(map[domain.ConnID]struct{})
		h.rooms[room] = set
	}
	set[id] = struct{}{}
}

func (h *Hub) Unsubscribe(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromRoomLocked(id)
}

func (h *Hub) Kill(id domain.ConnID) {
	h.mu.RLock()
	s := h.conns[id]
	h.mu.RUnlock()
	if s != nil {
		s.Close()
	}
}

type target struct {
	id domain.ConnID
	s  sender
}

func encode(event string, payload any) (core.Frame, error) {
	b, err := json.Marshal(envelope{Type: event, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "ws.hub").Str("event", event).Msg("encode payload")
		return nil, err
	}
	return b, nil
}

func (h *Hub) deliver(id domain.ConnID, s sender, event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		return
	}
	h.send(id, s, event, frame)
}

// send closes connections that cannot keep up; a signaling client with a
// full queue is as good as gone.
func (h *Hub) send(id domain.ConnID, s sender, event string, frame core.Frame) {
	if err := s.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "ws.hub").
			Str("conn", string(id)).Str("event", event).
			Msg("send failed, closing connection")
		s.Close()
	}
}

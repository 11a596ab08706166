// Package core holds the interfaces and DTOs shared between the
// coordinator and the adapters.
package core

import "github.com/hububba/hubcalls/internal/domain"

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// Transport is what the coordinator knows about the connection layer.
// It never manages socket lifecycles itself; the adapter owns those.
//
// The per-connection identity on every inbound event is supplied by the
// transport. Room grouping is a transport-side index maintained through
// Subscribe/Unsubscribe so that Broadcast can fan out without consulting
// coordinator state.
type Transport interface {
	// Emit delivers an event to a single connection. Delivery to an
	// unknown or closed connection is a silent no-op.
	Emit(to domain.ConnID, event string, payload any)
	// Broadcast delivers an event to every connection subscribed to room.
	Broadcast(room domain.RoomName, event string, payload any)
	// BroadcastExcept is Broadcast minus one connection.
	BroadcastExcept(room domain.RoomName, except domain.ConnID, event string, payload any)
	// EmitAll delivers an event to every open connection.
	EmitAll(event string, payload any)

	// Subscribe adds a connection to a room's fan-out set. A connection
	// is subscribed to at most one room; a second Subscribe moves it.
	Subscribe(id domain.ConnID, room domain.RoomName)
	// Unsubscribe removes a connection from its room fan-out set.
	Unsubscribe(id domain.ConnID)

	// Kill forcibly terminates a connection.
	Kill(id domain.ConnID)
}

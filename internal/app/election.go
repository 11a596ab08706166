package app

import (
	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
)

// electOwnerLocked re-resolves ownership after any mutation that can
// invalidate it. A live owner keeps the seat; otherwise the earliest
// joiner is promoted, ties broken by display name for determinism. Runs
// before the enclosing operation returns, so a non-empty room is never
// ownerless across operations.
func (c *Coordinator) electOwnerLocked(r *domain.Room) {
	if r.Owner != "" {
		if _, ok := r.Members[r.Owner]; ok {
			return
		}
	}
	if len(r.Members) == 0 {
		r.Owner = ""
		return
	}
	var next *domain.Member
	for _, m := range r.Members {
		if next == nil {
			next = m
			continue
		}
		if m.JoinedAt.Before(next.JoinedAt) ||
			(m.JoinedAt.Equal(next.JoinedAt) && lessFold(m.Name, next.Name)) {
			next = m
		}
	}
	r.Owner = next.Name
	log.Info().Str("module", "app.coordinator").
		Str("room", string(r.Name)).Str("owner", r.Owner).
		Msg("owner elected")
	c.tr.Broadcast(r.Name, core.EvtOwnerChanged, core.OwnerChanged{Room: r.Name, Owner: r.Owner})
	c.appendChatLocked(r, domain.KindSystem, "", r.Owner+" is now the owner")
}

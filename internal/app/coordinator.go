package app

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
	"github.com/hububba/hubcalls/internal/metrics"
)

// Options carries the tunable thresholds. Grace is the delay between a
// transport disconnect and membership finalization; Stale is the
// silent-holder age past which a duplicate-name join auto-evicts.
type Options struct {
	Grace time.Duration
	Stale time.Duration

	ChatHighWater int
	ChatLowWater  int
	ChatMaxLen    int
	ChatTail      int

	ChatRate       int
	ChatRateWindow time.Duration

	ICEServers []webrtc.ICEServer
}

// binding records which (room, display name) a connection currently holds.
// It is a secondary index: membership state is the source of truth, and a
// binding must be pruned whenever its member is removed or replaced.
type binding struct {
	Room domain.RoomName
	User string
}

// Coordinator owns the room store and the connection registry and is the
// authority for who is present right now. Every operation is one
// indivisible transaction against both structures under mu; grace checks
// take the same lock, so a pending check and a live rejoin racing on the
// same connection id are resolved by the freshness re-check, not by
// ordering.
type Coordinator struct {
	opts Options
	tr   core.Transport

	mu    sync.Mutex
	rooms map[domain.RoomName]*domain.Room
	conns map[domain.ConnID]binding

	chat *slidingLimiter

	// test seams; production uses the wall clock and time.AfterFunc
	now      func() time.Time
	schedule func(time.Duration, func())
}

func New(tr core.Transport, opts Options) *Coordinator {
	if opts.ChatTail <= 0 {
		opts.ChatTail = 50
	}
	c := &Coordinator{
		opts:  opts,
		tr:    tr,
		rooms: make(map[domain.RoomName]*domain.Room),
		conns: make(map[domain.ConnID]binding),
		chat:  newSlidingLimiter(opts.ChatRate, opts.ChatRateWindow),
		now:   time.Now,
	}
	c.schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	return c
}

// Snapshot returns the rooms overview served to polling clients.
func (c *Coordinator) Snapshot() []core.RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() []core.RoomSummary {
	now := c.now()
	out := make([]core.RoomSummary, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, core.RoomSummary{
			Name:    r.Name,
			Users:   memberNames(r),
			Elapsed: r.Elapsed(now),
			Owner:   r.Owner,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessFold(string(out[i].Name), string(out[j].Name))
	})
	return out
}

func (c *Coordinator) broadcastRoomsLocked() {
	c.tr.EmitAll(core.EvtRoomsUpdate, c.snapshotLocked())
}

// appendChatLocked appends one entry to the room transcript and fans it
// out to the room's subscribers. Entries carry ULIDs so clients can
// dedupe against the tail delivered in a joined payload.
func (c *Coordinator) appendChatLocked(r *domain.Room, kind, author, text string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:     ulid.Make().String(),
		At:     c.now(),
		Kind:   kind,
		Author: author,
		Text:   text,
		Room:   r.Name,
	}
	r.Chat.Append(msg)
	c.tr.Broadcast(r.Name, core.EvtChatMessage, msg)
	return msg
}

// dropLocked removes a member, prunes its registry binding, and performs
// the shared departure bookkeeping. The caller broadcasts the rooms
// snapshot afterwards.
func (c *Coordinator) dropLocked(r *domain.Room, m *domain.Member, sysText string) {
	delete(r.Members, m.Name)
	delete(c.conns, m.Conn)
	c.tr.Unsubscribe(m.Conn)
	c.chat.Forget(string(r.Name) + "/" + m.Name)

	if len(r.Members) == 0 {
		r.Owner = ""
		delete(c.rooms, r.Name)
		log.Info().Str("module", "app.coordinator").Str("room", string(r.Name)).Msg("room emptied, deleted")
	} else {
		c.appendChatLocked(r, domain.KindSystem, "", sysText)
		c.tr.Broadcast(r.Name, core.EvtPeerLeft, core.PeerLeft{User: m.Name})
		c.electOwnerLocked(r)
	}
	c.updateGaugesLocked()
}

func (c *Coordinator) updateGaugesLocked() {
	members := 0
	for _, r := range c.rooms {
		members += len(r.Members)
	}
	metrics.RoomsActive.Set(float64(len(c.rooms)))
	metrics.MembersActive.Set(float64(members))
}

func memberNames(r *domain.Room) []string {
	names := make([]string, 0, len(r.Members))
	for name := range r.Members {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return lessFold(names[i], names[j]) })
	return names
}

// lessFold orders case-insensitively, falling back to the exact strings
// so equal-fold names still sort deterministically.
func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

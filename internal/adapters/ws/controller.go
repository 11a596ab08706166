package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/app"
	"github.com/hububba/hubcalls/internal/config"
	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	hub   *Hub
	coord *app.Coordinator
	cfg   *config.Config
}

func NewController(hub *Hub, coord *app.Coordinator, cfg *config.Config) *Controller {
	return &Controller{hub: hub, coord: coord, cfg: cfg}
}

// HandleWS upgrades the request and runs the connection until it drops.
// Each connection gets a fresh id; identity continuity across reconnects
// is the coordinator's business, not the socket's.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}

	id := domain.ConnID(uuid.NewString())
	conn := newWSConn(socket, 32)
	ctl.hub.add(id, conn)
	log.Info().Str("module", "ws").Str("conn", string(id)).Msg("connection open")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	ctl.hub.Emit(id, core.EvtHello, core.Hello{OK: true})

	ctl.readPump(ctx, id, conn)

	cancel()
	conn.Close()
	ctl.hub.remove(id)
	// Route the drop through the grace path; never remove directly.
	ctl.coord.Disconnect(id)
	log.Info().Str("module", "ws").Str("conn", string(id)).Msg("connection closed")
}

func (ctl *Controller) readPump(ctx context.Context, id domain.ConnID, c *wsConn) {
	if ctl.cfg.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("read error")
				}
				return
			}
			ctl.dispatch(id, data)
		}
	}
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := ctl.cfg.PingPeriod
	if ping <= 0 {
		ping = 54 * time.Second
	}
	ticker := time.NewTicker(ping)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "ws").Msg("write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/adapters/preview"
	"github.com/hububba/hubcalls/internal/adapters/ws"
	"github.com/hububba/hubcalls/internal/app"
	"github.com/hububba/hubcalls/internal/config"
)

// ClientTokenMiddleware gives every browser a stable opaque token. The
// signaling identity is still per-connection; the token only correlates
// requests in logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator, hub *ws.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HubcallsSession", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := ws.NewController(hub, coord, cfg)
	fetcher := preview.NewFetcher(cfg.PreviewTTL, cfg.PreviewTimeout)

	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleWS(ctx, c)
	})
	// Read-only snapshot for polling clients that don't hold a socket.
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Snapshot())
	})
	api.GET("/preview", func(c *gin.Context) {
		raw := c.Query("url")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url required"})
			return
		}
		p, err := fetcher.Fetch(c.Request.Context(), raw)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "preview unavailable"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	return r
}

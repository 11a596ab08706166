package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/hububba/hubcalls/internal/adapters/http"
	"github.com/hububba/hubcalls/internal/adapters/ws"
	"github.com/hububba/hubcalls/internal/app"
	"github.com/hububba/hubcalls/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return
	}

	hub := ws.NewHub()
	coord := app.New(hub, app.Options{
		Grace:          cfg.Grace,
		Stale:          cfg.Stale,
		ChatHighWater:  cfg.ChatHighWater,
		ChatLowWater:   cfg.ChatLowWater,
		ChatMaxLen:     cfg.ChatMaxLen,
		ChatTail:       cfg.ChatTail,
		ChatRate:       cfg.ChatRate,
		ChatRateWindow: cfg.ChatRateWindow,
		ICEServers:     iceServers(cfg),
	})

	r := router.SetupRouter(ctx, cfg, coord, hub)

	ln, err := listen(cfg)
	if err != nil {
		log.Error().Err(err).Msg("no port available")
		return
	}

	srv := &http.Server{Handler: r}

	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("hubcalls server started")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// listen binds the configured port, probing upward for the next free one
// when auto_port is set. Local-dev convenience carried over from the
// original deployment.
func listen(cfg *config.Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err == nil || !cfg.AutoPort {
		return ln, err
	}
	for port := cfg.Port + 1; port < cfg.Port+100; port++ {
		ln, err = net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			log.Warn().Int("configured", cfg.Port).Int("port", port).Msg("configured port busy, picked next free")
			return ln, nil
		}
	}
	return nil, fmt.Errorf("no free port in [%d,%d): %w", cfg.Port, cfg.Port+100, err)
}

func iceServers(cfg *config.Config) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}

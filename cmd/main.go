package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepgram/chatdesk/internal/api/v1/handlers"
	"github.com/deepgram/chatdesk/internal/config"
	"github.com/deepgram/chatdesk/internal/services"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Setup(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := services.InitializeServices(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer svcs.Close()

	srv := &http.Server{
		Addr:              config.GetListenAddr(),
		Handler:           setupRouter(svcs),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// hijacked WebSocket connections are not closed by Shutdown
	srv.RegisterOnShutdown(svcs.GetConnectionManager().CloseAll)

	// Shutdown watcher
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("ListenAndServe error")
		return
	}
	log.Info().Msg("Server stopped")
}

func setupRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()
	handlers.RegisterRoutes(r, svcs)
	return r
}

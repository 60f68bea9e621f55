package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"movie-file-service/config"
	"movie-file-service/constant"
	"movie-file-service/handler"
	"movie-file-service/pkg/execx"
	"movie-file-service/pkg/ftpstore"
	"movie-file-service/pkg/rabbitmq"
	"movie-file-service/service"
)

// RunWorker starts the transcode queue consumer plus a minimal health
// endpoint. The dispatcher reconnects on its own; this function only
// returns on shutdown or when the reconnect attempt cap is exhausted.
func RunWorker(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := newRepo(ctx, cfg)
	runner := execx.NewCommandRunner()
	newStorage := func(host, user, pass string) service.Storage {
		return ftpstore.New(host, cfg.FTP.Port, user, pass, cfg.FTP.Timeout)
	}

	svc := service.NewTranscodeService(cfg, repo, runner, newStorage)
	dispatcher := rabbitmq.NewDispatcher(cfg.Queue, handler.TranscodeJobHandler(svc))

	r := gin.New()
	addHealth(r)
	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("health server")
		}
	}()
	defer srv.Shutdown(context.Background())

	zerolog.Ctx(ctx).Info().Str("queue", cfg.Queue.Queue).Msg("starting transcode worker")
	// No Fatal here: os.Exit would skip the deferred health server shutdown.
	if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zerolog.Ctx(ctx).Error().Err(err).Msg("dispatcher terminated")
		return
	}

	zerolog.Ctx(ctx).Info().Msg("worker shutdown")
}

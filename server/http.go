package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"movie-file-service/config"
	"movie-file-service/constant"
	"movie-file-service/pkg/ftpstore"
	"movie-file-service/pkg/rabbitmq"
	"movie-file-service/repository"
	"movie-file-service/service"
)

// RunAPI starts the ingestion and lifecycle HTTP API.
func RunAPI(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewRabbitMQConn")
	}

	repo := newRepo(ctx, cfg)
	store := ftpstore.New(cfg.FTP.Host, cfg.FTP.Port, cfg.FTP.User, cfg.FTP.Pass, cfg.FTP.Timeout)
	publisher := rabbitmq.NewPublisher(conn, cfg.Queue.Queue)

	ingest := service.NewIngestService(cfg, store, publisher, repo)
	lifecycle := service.NewLifecycleService(cfg, store)

	r := gin.Default()
	r.Use(requestLogger(ctx))
	addHealth(r)
	registerRoutes(r, ingest, lifecycle)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Str("port", cfg.Server.HttpPort).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("shutdown")
	}

	zerolog.Ctx(ctx).Info().Msg("server shutdown")
}

func newRepo(ctx context.Context, cfg *config.Config) repository.JobRepository {
	if cfg.DB == nil {
		zerolog.Ctx(ctx).Info().Msg("job ledger disabled, no postgres dsn configured")
		return nil
	}
	repo, err := repository.NewRepo(cfg.DB)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("open job ledger")
	}
	return repo
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

// requestLogger puts the process logger into each request context so
// services can use zerolog.Ctx.
func requestLogger(ctx context.Context) gin.HandlerFunc {
	logger := zerolog.Ctx(ctx)
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}

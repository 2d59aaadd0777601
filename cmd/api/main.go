package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tuiter/tuiter-api/internal/api"
	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/ranking"
	"github.com/tuiter/tuiter-api/internal/core/service"
	"github.com/tuiter/tuiter-api/internal/infrastructure/config"
	"github.com/tuiter/tuiter-api/internal/infrastructure/db/postgres"
	redisdb "github.com/tuiter/tuiter-api/internal/infrastructure/db/redis"
	"github.com/tuiter/tuiter-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "tuiter-api"})
		boot.Fatal().Err(err).Msg("configuration failed")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "tuiter-api",
		Pretty:  cfg.Env == "development",
	})

	// --- Postgres ---
	pool, err := postgres.Connect(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()
	log.Info().Msg("connected to redis")

	// --- Repositories ---
	userRepo := postgres.NewUserRepository(pool)
	tuitRepo := postgres.NewTuitRepository(pool)
	feedbackRepo := postgres.NewFeedbackRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	sessionCache := redisdb.NewSessionCache(rdb)

	// --- Services ---
	userService := service.NewUserService(userRepo, nil, log)
	sessionService := service.NewSessionService(userRepo, sessionRepo, sessionCache, cfg.JWTSecret, log)
	tuitService := service.NewTuitService(tuitRepo, feedbackRepo, ranking.NewRanker(ranking.DefaultWeights), log)

	// --- Admission control ---
	gate := postgres.NewAdmissionGate(pool)
	go gate.Run(ctx)

	e := api.NewRouter(api.Dependencies{
		Users:    userService,
		Sessions: sessionService,
		Tuits:    tuitService,
		Engine:   authorization.New(),
		Gate:     gate,
		Pool:     pool,
		Redis:    rdb,
		Logger:   log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}

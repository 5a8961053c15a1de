// Command server runs the movie catalog HTTP service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/moviemaster/catalog/internal/catalog"
	"github.com/moviemaster/catalog/internal/config"
	"github.com/moviemaster/catalog/internal/database"
	"github.com/moviemaster/catalog/internal/handler"
	"github.com/moviemaster/catalog/internal/logger"
	"github.com/moviemaster/catalog/internal/middleware"
	"github.com/moviemaster/catalog/internal/queue"
	"github.com/moviemaster/catalog/internal/repository"
	"github.com/moviemaster/catalog/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	logger.Init()
	log := logger.Get()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable or unconfigured
	if rdb == nil {
		log.Warn("redis unavailable; cache disabled, rate limiting falls back to in-process")
	}
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	movies := repository.NewMovieRepo(db)
	watchlist := repository.NewWatchlistRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	svc := catalog.NewService(movies, watchlist)

	movieH := handler.NewMovieHandler(svc, rdb, cacheCfg.Prefix)
	watchH := handler.NewWatchlistHandler(svc, rdb, cacheCfg.Prefix)
	authH := handler.NewAuthHandler(cfg, users, tokens)
	healthH := handler.NewHealthHandler(db, rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterHealth(e, healthH)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCatalog(e, movieH, watchH, cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))

	go queue.StartCatalogConsumer()

	go func() {
		addr := ":" + cfg.Port
		log.WithField("addr", addr).Info("catalog service listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/war/internal/cache"
	"github.com/jason-s-yu/war/internal/config"
	"github.com/jason-s-yu/war/internal/database"
	"github.com/jason-s-yu/war/internal/game"
	"github.com/jason-s-yu/war/internal/handlers"
	"github.com/jason-s-yu/war/internal/reminder"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store handlers.Store
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatalf("schema: %v", err)
		}
		store = database.NewStore(pool)
	default:
		store = game.NewGameStore()
	}
	logger.Infof("using %s store", cfg.Store)

	gs := handlers.NewGameServer(store, cfg.Rules, logger)
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		gs.Cache = cache.New(rdb, cfg.QueueName, cfg.RankingCacheTTL)
	} else {
		logger.Warn("REDIS_ADDR not set; battle log and ranking cache disabled")
	}

	job := &reminder.Job{
		Store:  store,
		Mailer: reminder.LogMailer{Logger: logger},
		From:   cfg.ReminderFrom,
		Logger: logger,
	}

	var origins []string
	if cfg.Production() {
		origins = cfg.AllowedOrigins
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(gs, handlers.RouterOptions{AllowedOrigins: origins, Reminder: job}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", server.Addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("failed to serve: %v", err)
		}
	case <-ctx.Done():
		logger.Info("terminating")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

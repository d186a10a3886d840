package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"publicblog/config"
	"publicblog/handlers"
	"publicblog/logger"
	"publicblog/storage"
	"publicblog/storage/in_memory"
	"publicblog/storage/persistent"
	"publicblog/views"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/motemen/go-loghttp/global"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func CreateRouter(handler *handlers.HTTPHandler, log *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(handlers.AccessLog(log))

	r.HandleFunc("/maintenance/ping", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/api/v1/public/posts", handler.HandleListPosts).Methods("GET")
	r.HandleFunc("/api/v1/public/post", handler.HandleGetPost).Methods("POST")
	if handler.Stats != nil {
		r.HandleFunc("/maintenance/views", handler.HandleViewStats).Methods("GET")
	}
	return r
}

func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:      handler,
		Addr:         "0.0.0.0:" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}

func createStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, func(), error) {
	if cfg.StorageMode == config.Mongo {
		mongoStorage, err := persistent.CreateMongoStorage(ctx, cfg.Mongo.URL, cfg.Mongo.DbName, log)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := mongoStorage.Disconnect(context.Background()); err != nil {
				log.Error("Failed to disconnect from mongo", slog.String("error", err.Error()))
			}
		}
		return mongoStorage, closer, nil
	}

	memoryStorage := in_memory.CreateInMemoryStorage()
	if cfg.SeedFile != "" {
		if err := memoryStorage.LoadSeedFile(cfg.SeedFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load seed %s: %w", cfg.SeedFile, err)
		}
		log.Info("Loaded seed", slog.String("file", cfg.SeedFile))
	}
	return memoryStorage, func() {}, nil
}

func runServer(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()
	store, closeStorage, err := createStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	var recorder handlers.ViewRecorder = views.NopRecorder{}
	var stats handlers.ViewStats
	if cfg.ViewEventsEnabled() {
		queue, err := views.NewQueueRecorder(cfg.RedisURL, log)
		if err != nil {
			return err
		}
		redisStats, err := views.NewRedisStats(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisStats.Close()
		recorder, stats = queue, redisStats
	}

	handler := handlers.NewHTTPHandler(store, recorder, stats, log)
	srv := CreateServer(cfg.Port, CreateRouter(handler, log))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	done := make(chan error, 1)
	go func() {
		log.Info("Start serving", slog.String("addr", srv.Addr), slog.String("storage", string(cfg.StorageMode)))
		done <- srv.ListenAndServe()
	}()

	select {
	case err := <-done:
		return err
	case <-quit:
	}
	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runWorker(cfg *config.Config, log *slog.Logger) error {
	stats, err := views.NewRedisStats(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer stats.Close()
	return views.RunWorker(cfg.RedisURL, stats, log)
}

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	var err error
	switch cfg.AppMode {
	case config.ServerMode:
		err = runServer(cfg, log)
	case config.WorkerMode:
		err = runWorker(cfg, log)
	}
	if err != nil && err != http.ErrServerClosed {
		log.Error("Exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"milk-backend/config"
	"milk-backend/database"
	"milk-backend/firebase"
	"milk-backend/logging"
	"milk-backend/middleware"
	"milk-backend/realtime"
	"milk-backend/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		slog.Error("Error loading .env file", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		logger.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Firebase backs icon storage and, optionally, the document store
	var storageClient firebase.StorageClient
	if cfg.FirebaseStorageBucket != "" || cfg.FirebaseProjectID != "" || cfg.StoreDriver == database.DriverFirestore {
		if err := firebase.Init(ctx, cfg.FirebaseProjectID, cfg.FirebaseStorageBucket); err != nil {
			logger.Error("Firebase initialization failed", "error", err)
			if cfg.StoreDriver == database.DriverFirestore {
				os.Exit(1)
			}
		} else if cfg.FirebaseStorageBucket != "" {
			storageClient = firebase.NewStorageClient()
		}
	}

	store, err := database.Open(ctx, database.Options{
		Driver:      cfg.StoreDriver,
		DataFile:    cfg.DataFile,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		Firestore:   firebase.Firestore,
	})
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}

	// Broadcast channel: in-process hub, shared through RabbitMQ when configured
	hub := realtime.NewHub(32)
	var events realtime.Publisher = hub
	var bridge *realtime.AMQPBridge
	if cfg.RabbitMQURL != "" {
		bridge, err = realtime.DialAMQP(cfg.RabbitMQURL, cfg.EventExchange, hub)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events stay local", "error", err)
		} else {
			events = bridge
			go func() {
				if err := bridge.Run(ctx); err != nil {
					logger.Error("Event bridge stopped, events stay local", "error", err)
				}
			}()
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	// Limit multipart form memory to 2MB
	r.MaxMultipartMemory = 2 << 20

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:" + cfg.Port}
		logger.Warn("No CORS origins configured", "default", origins[0])
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, routes.Deps{
		Store:     store,
		Hub:       hub,
		Events:    events,
		Storage:   storageClient,
		Limiter:   limiter,
		StaticDir: cfg.StaticDir,
		AdminPath: cfg.AdminPath,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	// open SSE streams would otherwise hold Shutdown until the timeout
	srv.RegisterOnShutdown(hub.Close)

	// Run server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "store", cfg.StoreDriver, "admin_path", cfg.AdminPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stop()
	if bridge != nil {
		bridge.Close()
	}
	if err := store.Close(); err != nil {
		logger.Error("Error closing store", "error", err)
	} else {
		logger.Info("Store closed")
	}

	logger.Info("Server exited gracefully")
}

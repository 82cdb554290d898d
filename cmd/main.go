/*
Package main is the entry point for the gemchat server.

It is responsible for loading configuration, initializing the global
logging system, wiring the account database, session store, transcript
store, and WebSocket hub together, and gracefully handling operating
system interrupt signals (SIGINT, SIGTERM) to ensure a smooth server
shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gemchat/internal/app/account"
	"gemchat/internal/app/chat"
	"gemchat/internal/app/db"
	"gemchat/internal/app/session"
	"gemchat/internal/app/storage"
	"gemchat/internal/app/transcript"
	"gemchat/internal/configs"
	"gemchat/internal/handler"
	"gemchat/internal/pkg/logx"
	"gemchat/internal/pkg/pow"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("pow_difficulty", cfg.PowDifficulty).
		Str("transcript_path", cfg.TranscriptPath).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Accounts database
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	accounts := account.NewPostgresStore(pool)

	// Session store: Redis when configured, process memory otherwise
	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions, err = session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			logx.Fatal(err, "Failed to connect to Redis")
		}
		logx.Info("Session store using Redis.", "addr", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		logx.Info("Session store using process memory.")
	}
	defer sessions.Close()

	// Transcript store
	transcriptStore, err := transcript.NewFileStore(cfg.TranscriptPath)
	if err != nil {
		logx.Fatal(err, "Failed to initialize transcript store")
	}

	// Avatar object storage is optional
	var storageService storage.Service
	if cfg.S3Endpoint != "" {
		storageService, err = storage.NewService(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize avatar storage")
		}
		logx.Info("Avatar storage enabled.", "bucket", cfg.S3BucketName)
	} else {
		logx.Info("Avatar storage not configured; avatar uploads disabled.")
	}

	// Start the relay hub
	hub := chat.NewHub(transcriptStore)
	go hub.Run()

	deps := &handler.AppDeps{
		Hub:      hub,
		Config:   cfg,
		Sessions: sessions,
		Accounts: accounts,
		Storage:  storageService,
		Pow:      pow.NewManager(cfg.PowDifficulty),
	}

	// Setup HTTP server and routes
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("gemchat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Stop()

	logx.Info("Server gracefully stopped.")
}

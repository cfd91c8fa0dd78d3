package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameforum/internal/blob"
	"gameforum/internal/config"
	"gameforum/internal/httpserver"
	"gameforum/internal/security"
	"gameforum/internal/store"
	"gameforum/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize document storage
	var blobs blob.Store
	var closer io.Closer
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := blob.OpenPostgres(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to open postgres storage: %v", err)
		}
		blobs, closer = db, db
	default:
		db, err := blob.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite storage: %v", err)
		}
		blobs, closer = db, db
	}
	defer closer.Close()

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(cfg.BcryptCost)

	// Seed the admin account before accepting traffic.
	userStore := store.NewUserStore(blobs)
	adminHash, err := passwordHasher.Hash(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}
	if err := userStore.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminUsername, adminHash); err != nil {
		log.Fatalf("failed to ensure admin account: %v", err)
	}

	// Initialize WebSocket hub
	hub := ws.NewHub()

	// Build HTTP router
	router := httpserver.NewRouter(cfg, blobs, hub, tokenSvc, passwordHasher)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting GameForum server on %s\n", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

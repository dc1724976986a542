// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// KBPress is a headless knowledge base CMS. It serves a public read API
// for the published catalog and an authenticated admin API for managing
// the category hierarchy, articles, and media.
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

	"github.com/joho/godotenv"

	"kbpress/internal/cache"
	"kbpress/internal/config"
	"kbpress/internal/database"
	"kbpress/internal/handlers"
	"kbpress/internal/middleware"
	"kbpress/internal/router"
	"kbpress/internal/storage"
	"kbpress/internal/store"
	"kbpress/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.IsDev() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	valkey, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("valkey connection failed", "error", err)
		os.Exit(1)
	}
	defer valkey.Close()

	s3, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region,
		cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	if s3 == nil {
		slog.Warn("object storage not configured, uploads disabled")
	}

	admins := store.NewAdminStore(db)
	categories := store.NewCategoryStore(db)
	subcategories := store.NewSubcategoryStore(db)
	articles := store.NewArticleStore(db)
	media := store.NewMediaStore(db)

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	catalog := cache.NewCatalog(valkey, cache.DefaultCatalogTTL)

	mux := router.New(router.Deps{
		Auth:        handlers.NewAuthHandler(admins, tokens),
		Admin:       handlers.NewAdminHandler(categories, subcategories, articles, catalog),
		Media:       handlers.NewMediaHandler(media, s3, cfg.UploadMaxBytes),
		Public:      handlers.NewPublicHandler(categories, subcategories, articles, catalog, cfg.SearchMinQuery, cfg.SearchLimit),
		RequireAuth: middleware.RequireAuth(tokens, admins),
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr(), "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

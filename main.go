package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avinab11/velagio-qr-studio/cache"
	"github.com/avinab11/velagio-qr-studio/config"
	"github.com/avinab11/velagio-qr-studio/handler"
	appLogger "github.com/avinab11/velagio-qr-studio/logger"
	"github.com/avinab11/velagio-qr-studio/middleware"
	redisClient "github.com/avinab11/velagio-qr-studio/redis"
	"github.com/avinab11/velagio-qr-studio/security"
	"github.com/avinab11/velagio-qr-studio/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Velagio QR Studio API
// @version 1.0
// @description Dynamic QR code resolution service: short stable identifiers that redirect to mutable destinations, with scan analytics and an account-less ownership model.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Resolver
// @tag.description The redirect endpoint every printed QR code hits

// @tag.name Codes
// @tag.description Creating and reading dynamic codes

// @tag.name Management
// @tag.description Mutations authorized by the (id, edit token) pair

// @tag.name Analytics
// @tag.description Scan trends and breakdowns per code

// @tag.name Sync
// @tag.description Cross-device ownership transfer

func main() {
	appLogger.Initialize()

	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	rdb := redisClient.NewClient(cfg.Redis)

	var cacheClient *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		cacheClient, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	blacklist := security.NewBlacklist(cfg.Resolver.BlacklistEnabled, cfg.Resolver.DomainBlacklist)
	log.Info().
		Bool("blacklist_enabled", cfg.Resolver.BlacklistEnabled).
		Int("blacklist_domains", len(blacklist.Domains())).
		Msg("Domain blacklist initialized")

	codeStore := store.New(rdb, cfg.Resolver.ScanLogMax)
	apiHandler := handler.New(codeStore, cacheClient, rdb, cfg, blacklist)

	r := mux.NewRouter()

	r.Use(middleware.Recover)
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)

	r.HandleFunc("/health", apiHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/cache/metrics", apiHandler.CacheMetrics).Methods("GET")

	// The resolver is the public contract printed into every QR image
	r.HandleFunc("/resolve", apiHandler.Resolve).Methods("GET", "OPTIONS")

	r.HandleFunc("/qr", apiHandler.GenerateQR).Methods("GET")

	r.HandleFunc("/api/codes", apiHandler.CreateCode).Methods("POST")
	r.HandleFunc("/api/codes/lookup", apiHandler.LookupCodes).Methods("POST")
	r.HandleFunc("/api/codes/{id}", apiHandler.GetCode).Methods("GET")
	r.HandleFunc("/api/codes/{id}", apiHandler.UpdateTarget).Methods("PUT")
	r.HandleFunc("/api/codes/{id}", apiHandler.DeleteCode).Methods("DELETE")
	r.HandleFunc("/api/codes/{id}/block", apiHandler.SetBlocked).Methods("POST")
	r.HandleFunc("/api/codes/{id}/analytics", apiHandler.GetAnalytics).Methods("GET")
	r.HandleFunc("/api/codes/{id}/scans", apiHandler.GetScans).Methods("GET")

	r.HandleFunc("/api/sync/export", apiHandler.ExportSync).Methods("POST")
	r.HandleFunc("/api/sync/import", apiHandler.ImportSync).Methods("POST")

	// Swagger UI (spec generated with `swag init`)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if cacheClient != nil {
		cacheClient.Close()
	}

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}

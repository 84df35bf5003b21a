package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/avinab11/velagio-qr-studio/cache"
	"github.com/avinab11/velagio-qr-studio/config"
	"github.com/avinab11/velagio-qr-studio/security"
	"github.com/avinab11/velagio-qr-studio/store"

	"github.com/go-redis/redis/v8"
)

// Handler serves the dynamic-code API: resolution, creation, management,
// analytics, QR rendering, and ownership sync.
type Handler struct {
	store     *store.CodeStore
	cache     *cache.Cache
	redis     *redis.Client
	config    config.Config
	baseURL   string
	blacklist *security.Blacklist
}

// New creates a handler with its dependencies injected
func New(codeStore *store.CodeStore, cacheClient *cache.Cache, redisClient *redis.Client, cfg config.Config, blacklist *security.Blacklist) *Handler {
	// Use configured base_url if provided, otherwise construct from scheme, IP, and port
	baseURL := cfg.WebServer.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s:%s", cfg.WebServer.Scheme, cfg.WebServer.IP, cfg.WebServer.Port)
	}
	return &Handler{
		store:     codeStore,
		cache:     cacheClient,
		redis:     redisClient,
		config:    cfg,
		baseURL:   baseURL,
		blacklist: blacklist,
	}
}

// opCtx derives a context bounded by the configured store operation timeout
func (h *Handler) opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(h.config.Redis.OperationTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/avinab11/velagio-qr-studio/config"
	"github.com/avinab11/velagio-qr-studio/model"
	"github.com/avinab11/velagio-qr-studio/security"
	"github.com/avinab11/velagio-qr-studio/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
)

// muxSetID injects the {id} path variable for direct handler calls
func muxSetID(r *http.Request, id string) *http.Request {
	return mux.SetURLVars(r, map[string]string{"id": id})
}

type testEnv struct {
	handler *Handler
	store   *store.CodeStore
	redis   *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.Config{
		WebServer: config.WebServerConfig{
			Scheme: "http",
			IP:     "localhost",
			Port:   "8080",
		},
		Redis: config.RedisConfig{OperationTimeout: 5},
		Resolver: config.ResolverConfig{
			BlockedPath:      "/blocked",
			WarningPath:      "/blocked-warning",
			RedirectStatus:   301,
			ScanLogMax:       100,
			BlacklistEnabled: true,
		},
	}

	codeStore := store.New(client, cfg.Resolver.ScanLogMax)
	blacklist := security.NewBlacklist(true, nil)

	return &testEnv{
		handler: New(codeStore, nil, client, cfg, blacklist),
		store:   codeStore,
		redis:   mr,
	}
}

func (env *testEnv) mustCreate(t *testing.T, target string) model.DynamicCode {
	t.Helper()
	code, err := env.store.CreateCode(context.Background(), target)
	if err != nil {
		t.Fatalf("CreateCode() error = %v", err)
	}
	return code
}

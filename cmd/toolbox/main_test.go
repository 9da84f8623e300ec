package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fblazt/toolbox/internal/config"
	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/tools/apitester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	kv, err := openStorage(ctx, &config.Config{Mode: config.ModeMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, kv)

	kv, err = openStorage(ctx, &config.Config{Mode: config.ModeFile, FileStoragePath: filepath.Join(t.TempDir(), "kv.json")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, kv)

	kv, err = openStorage(ctx, &config.Config{Mode: config.ModeSQLite, SQLitePath: filepath.Join(t.TempDir(), "kv.db")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLiteStore{}, kv)
	require.NoError(t, kv.Close())

	mr := miniredis.RunT(t)
	kv, err = openStorage(ctx, &config.Config{Mode: config.ModeRedis, RedisAddr: mr.Addr()}, logger)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "k", "v"))
	assert.True(t, mr.Exists("toolbox:k"))
	require.NoError(t, kv.Close())
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg, err := config.Load([]string{"-a", "127.0.0.1:0", "-f", filepath.Join(t.TempDir(), "kv.json")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, run(ctx, cfg, zap.NewNop()))
}

func TestNewService_UsesConfig(t *testing.T) {
	cfg, err := config.Load([]string{"-p", "best-effort"})
	require.NoError(t, err)
	cfg.ImageMaxParallel = 3

	cfg.ImageMaxPixels = 1000

	svc := newService(cfg, storage.NewMemoryStore(), zap.NewNop())
	assert.Equal(t, 3, svc.Pipeline.MaxParallel)
	assert.Equal(t, 1000, svc.Pipeline.Converter.MaxPixels)
	assert.Equal(t, cfg.Policy(), svc.Policy)
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestNewService_TesterRefusesLoopbackByDefault(t *testing.T) {
	var hits atomic.Int32
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer target.Close()

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	require.False(t, cfg.APITesterAllowPrivate)

	svc := newService(cfg, storage.NewMemoryStore(), zap.NewNop())
	ws := svc.Workspace(context.Background(), "client-1")
	_, err = ws.Tester.Send(context.Background(), model.APIRequest{Method: "GET", URL: target.URL})

	var reqErr *apitester.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.ErrorIs(t, err, apitester.ErrForbiddenAddress)
	assert.Empty(t, ws.Tester.History())
	assert.Zero(t, hits.Load())

	cfg.APITesterAllowPrivate = true
	svc = newService(cfg, storage.NewMemoryStore(), zap.NewNop())
	resp, err := svc.Workspace(context.Background(), "client-1").Tester.Send(context.Background(),
		model.APIRequest{Method: "GET", URL: target.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(1), hits.Load())
}

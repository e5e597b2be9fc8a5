package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcadeboard/adapters/jsonfile"
	mem "arcadeboard/adapters/memory"
	"arcadeboard/config"
	"arcadeboard/core"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSetupStorage(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	s, err := setupStorage(ctx, cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &mem.Store{}, s)

	cfg.Storage.Adapter = config.AdapterFile
	cfg.Storage.File.Path = filepath.Join(t.TempDir(), "board.json")
	s, err = setupStorage(ctx, cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &jsonfile.Store{}, s)

	cfg.Storage.Adapter = config.AdapterSQL
	cfg.Storage.SQL.DSN = ""
	_, err = setupStorage(ctx, cfg, discardLogger())
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)

	cfg.Storage.Adapter = "tape"
	_, err = setupStorage(ctx, cfg, discardLogger())
	assert.ErrorContains(t, err, "unknown storage adapter")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("loud"))
}

func TestSetupLoggingOutput(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := config.DefaultConfig()
	cfg.Logging.Output = "stderr"
	cfg.Logging.Format = "text"
	cfg.Logging.Attributes = map[string]string{"service": "arcadeboard"}

	var stdout, stderr bytes.Buffer
	logger := setupLogging(cfg, &stdout, &stderr)
	logger.Info("hello")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "service=arcadeboard")
	assert.Contains(t, stderr.String(), "msg=hello")
}

func TestHandlerServesAPI(t *testing.T) {
	cfg := config.DefaultConfig()
	hub := provideHub()
	m := provideMetrics(cfg)
	assert.Nil(t, m, "metrics are off by default")

	storage, err := setupStorage(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	activity := provideActivity()
	svc := provideService(hub, storage, provideWebhooks(cfg, discardLogger()), m, activity)
	defer svc.Close()

	h := provideHandler(svc, hub, cfg, discardLogger(), m, provideCatalog(cfg), activity)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/scores/quiz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats/activity", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	srv := provideServer(cfg, h)
	assert.Equal(t, cfg.Server.Address, srv.Addr)
	assert.Equal(t, cfg.Server.ReadHeaderTimeout, srv.ReadHeaderTimeout)
}

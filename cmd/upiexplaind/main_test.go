package main

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("UPIEXPLAIN_AI_PROVIDER", "none")
	t.Setenv("UPIEXPLAIN_LOGGING_LEVEL", "error")
}

func TestRun_MissingCatalog(t *testing.T) {
	isolatedEnv(t)
	t.Setenv("UPIEXPLAIN_CATALOG_PATH", filepath.Join(t.TempDir(), "missing.json"))

	err := run(context.Background(), "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestRun_MissingExplicitConfig(t *testing.T) {
	isolatedEnv(t)
	err := run(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), false)
	assert.ErrorContains(t, err, "failed to load config")
}

func TestMainIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	isolatedEnv(t)
	t.Setenv("UPIEXPLAIN_SERVER_PORT", "18084")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, "", false)
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://localhost:18084/health")
		return err == nil
	}, 2*time.Second, 50*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		Status         string `json:"status"`
		CatalogRecords int    `json:"catalog_records"`
		AIAvailable    bool   `json:"ai_available"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 13, health.CatalogRecords)
	assert.False(t, health.AIAvailable)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shutdown in time")
	}
}

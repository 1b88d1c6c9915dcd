package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs upix with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLookup(t *testing.T) {
	t.Run("code", func(t *testing.T) {
		out, err := execute(t, "lookup", "U30")
		require.NoError(t, err)
		assert.Contains(t, out, "U30")
		assert.Contains(t, out, "Debit Failed At Bank")
		assert.Contains(t, out, "Related errors")
		assert.Contains(t, out, "matched by slug")
	})

	t.Run("multi-word input", func(t *testing.T) {
		out, err := execute(t, "lookup", "Wrong", "PIN")
		require.NoError(t, err)
		assert.Contains(t, out, "ZM")
		assert.Contains(t, out, "matched by alias")
	})

	t.Run("no match", func(t *testing.T) {
		out, err := execute(t, "lookup", "totally-unrelated-xyz-123")
		require.ErrorIs(t, err, errNoMatch)
		assert.Contains(t, out, "No catalog entry")
	})

	t.Run("requires input", func(t *testing.T) {
		_, err := execute(t, "lookup")
		assert.Error(t, err)
	})
}

func TestRelated(t *testing.T) {
	out, err := execute(t, "related", "ZM", "--limit", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Related to ZM")
	assert.Contains(t, lines[1], "Z6")

	_, err = execute(t, "related", "qq42")
	assert.ErrorIs(t, err, errNoMatch)

	_, err = execute(t, "related", "zm", "--limit", "-1")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "u16"))
	assert.True(t, strings.HasPrefix(lines[12], "upi-app-crash"))
}

func TestCatalogFlag(t *testing.T) {
	path := writeCatalog(t, "errors.toml", `[qq42]
code = "QQ42"
title = "Test Failure"
explanation = "Only used in tests."
aliases = ["test failure"]
`)

	out, err := execute(t, "--catalog", path, "list")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "QQ42")

	out, err = execute(t, "--catalog", path, "lookup", "qq42")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Failure")
}

func TestValidate(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		out, err := execute(t, "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "13 records")
	})

	t.Run("file argument", func(t *testing.T) {
		path := writeCatalog(t, "errors.json", `{"u30": {"code": "U30", "title": "Debit Failed"}}`)
		out, err := execute(t, "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, path+": 1 records")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeCatalog(t, "errors.json", `{"u30": `)
		_, err := execute(t, "validate", path)
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeCatalog(t, "errors.yaml", "u30: {}\n")
		_, err := execute(t, "validate", path)
		assert.Error(t, err)
	})
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok","catalog_records":13,"ai_available":true}`))
		}))
		defer srv.Close()

		out, err := execute(t, "health", "--server", srv.URL+"/")
		require.NoError(t, err)
		assert.Contains(t, out, "OK")
		assert.Contains(t, out, "Catalog records: 13")
		assert.Contains(t, out, "AI fallback:     true")
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := execute(t, "health", "--server", srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})
}

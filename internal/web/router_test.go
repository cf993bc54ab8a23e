package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/upload"
)

func setupTestServer(t *testing.T) (*httptest.Server, *upload.Storage) {
	t.Helper()
	database := db.NewTestDB(t)
	uploads := upload.New(t.TempDir(), "/static/uploads", []string{"png"})

	router, err := NewRouter(database, uploads, zap.NewNop())
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, uploads
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIndexPage(t *testing.T) {
	server, _ := setupTestServer(t)

	status, body := get(t, server.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>Lost &amp; Found</title>")
	assert.Contains(t, body, `<option value="4">Books</option>`)
	assert.Contains(t, body, `<option value="sell">For sale</option>`)

	status, _ = get(t, server.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStaticAssets(t *testing.T) {
	server, _ := setupTestServer(t)

	status, body := get(t, server.URL+"/static/app.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "/api/items")
}

func TestUploadedFilesServed(t *testing.T) {
	server, uploads := setupTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(uploads.Dir(), "abc.png"), []byte("png"), 0o644))

	status, body := get(t, server.URL+"/static/uploads/abc.png")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "png", body)

	status, _ = get(t, server.URL+"/static/uploads/")
	assert.Equal(t, http.StatusNotFound, status)
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/upload"
)

type testEnv struct {
	server  *httptest.Server
	db      *sqlx.DB
	uploads *upload.Storage
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	uploads := upload.New(t.TempDir(), "/static/uploads", []string{"png", "jpg", "jpeg", "gif"})

	router := NewRouter(database, uploads, Options{MaxMemory: 1 << 20}, zap.NewNop())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, db: database, uploads: uploads}
}

func getItems(t *testing.T, url string) []model.Item {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []model.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	return items
}

func titles(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title.String
	}
	return out
}

type createResult struct {
	Success bool        `json:"success"`
	Item    *model.Item `json:"item"`
	Error   string      `json:"error"`
}

func postMultipart(t *testing.T, url string, fields map[string]string, filename string, content []byte) (*http.Response, createResult) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result createResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp, result
}

func TestListItemsEndpoint(t *testing.T) {
	env := setupTestServer(t)

	items := getItems(t, env.server.URL+"/api/items")
	assert.Equal(t, []string{"Lost iPhone 13", "Found Car Keys", "Laptop for Sale"}, titles(items))
	assert.Equal(t, "Electronics", items[0].CategoryName.String)

	items = getItems(t, env.server.URL+"/api/items?type=lost&status=active")
	assert.Equal(t, []string{"Lost iPhone 13"}, titles(items))

	items = getItems(t, env.server.URL+"/api/items?location=Downtown")
	assert.Equal(t, []string{"Laptop for Sale"}, titles(items))
}

func TestListItemsPaginationEndpoint(t *testing.T) {
	env := setupTestServer(t)

	all := getItems(t, env.server.URL+"/api/items")
	first := getItems(t, env.server.URL+"/api/items?limit=1&offset=0")
	second := getItems(t, env.server.URL+"/api/items?limit=1&offset=1")

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, all[0].ID, first[0].ID)
	assert.Equal(t, all[1].ID, second[0].ID)

	// Malformed numbers fall back to the defaults.
	items := getItems(t, env.server.URL+"/api/items?limit=abc&offset=xyz")
	assert.Len(t, items, 3)
}

func TestSearchEndpoint(t *testing.T) {
	env := setupTestServer(t)

	items := getItems(t, env.server.URL+"/api/search?q=iphone")
	assert.Equal(t, []string{"Lost iPhone 13"}, titles(items))

	resp, err := http.Get(env.server.URL + "/api/search?q=zzz_no_match")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestCategoriesEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.server.URL + "/api/categories")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var categories []model.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	require.Len(t, categories, 5)
	assert.Equal(t, "Accessories", categories[0].Name)
	assert.Equal(t, int64(3), categories[0].ID)
}

func TestCreateItemForm(t *testing.T) {
	env := setupTestServer(t)

	form := url.Values{"type": {"found"}, "title": {"Found Wallet"}, "description": {""}}
	resp, err := http.PostForm(env.server.URL+"/api/items", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, "true", string(raw["success"]))

	var item map[string]any
	require.NoError(t, json.Unmarshal(raw["item"], &item))
	assert.Equal(t, "Found Wallet", item["title"])
	assert.Equal(t, "active", item["status"])
	assert.Equal(t, "", item["description"])
	assert.Nil(t, item["location"])
	assert.Nil(t, item["image_path"])
	assert.NotContains(t, item, "image_url")

	items := getItems(t, env.server.URL+"/api/items")
	require.Len(t, items, 4)
	assert.Equal(t, "Found Wallet", items[0].Title.String)
}

func TestCreateItemMissingFields(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.PostForm(env.server.URL+"/api/items", url.Values{})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result createResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.False(t, result.Item.Type.Valid)
	assert.False(t, result.Item.Title.Valid)
}

func TestCreateItemRejectedUpload(t *testing.T) {
	env := setupTestServer(t)

	resp, result := postMultipart(t, env.server.URL+"/api/items",
		map[string]string{"type": "lost", "title": "Notebook"}, "note.txt", []byte("hello"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.Success)
	assert.False(t, result.Item.ImagePath.Valid)
	assert.Empty(t, result.Item.ImageURL)

	entries, err := os.ReadDir(env.uploads.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateItemWithImage(t *testing.T) {
	env := setupTestServer(t)

	resp, result := postMultipart(t, env.server.URL+"/api/items",
		map[string]string{"type": "sell", "title": "Camera", "price": "120", "category_id": "1"},
		"photo.JPG", []byte("not really a jpeg"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, result.Success)

	item := result.Item
	assert.Equal(t, "Electronics", item.CategoryName.String)
	assert.Equal(t, 120.0, item.Price.Float64)
	require.True(t, item.ImagePath.Valid)
	assert.True(t, strings.HasSuffix(item.ImagePath.String, ".jpg"))
	assert.Equal(t, env.server.URL+"/static/uploads/"+item.ImagePath.String, item.ImageURL)

	p, err := env.uploads.Path(item.ImagePath.String)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "not really a jpeg", string(data))

	listed := getItems(t, env.server.URL+"/api/items?type=sell")
	require.NotEmpty(t, listed)
	assert.Equal(t, item.ImageURL, listed[0].ImageURL)
}

func TestCreateItemUnknownTypeFails(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.PostForm(env.server.URL+"/api/items", url.Values{"type": {"stolen"}, "title": {"x"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var result createResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestGetItemEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.server.URL + "/api/items/1")
	require.NoError(t, err)
	var item model.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	resp.Body.Close()
	assert.Equal(t, "Lost iPhone 13", item.Title.String)

	resp, err = http.Get(env.server.URL + "/api/items/999")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(env.server.URL + "/api/items/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStoreFailureEnvelope(t *testing.T) {
	env := setupTestServer(t)
	require.NoError(t, env.db.Close())

	for _, path := range []string{"/api/items", "/api/search?q=x", "/api/categories"} {
		resp, err := http.Get(env.server.URL + path)
		require.NoError(t, err)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		assert.NotEmpty(t, body["error"], path)
	}

	resp, err := http.Get(env.server.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBaseURL(t *testing.T) {
	r := httptest.NewRequest("GET", "http://board.local/api/items", nil)
	assert.Equal(t, "http://board.local", baseURL(r, ""))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://board.local", baseURL(r, ""))

	assert.Equal(t, "https://cdn.example.org", baseURL(r, "https://cdn.example.org"))
}

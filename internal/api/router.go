package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/erazemk/najdeno/internal/upload"
)

// Options configures the API router.
type Options struct {
	// PublicURL overrides the request-derived base of image URLs.
	PublicURL string
	// MaxMemory is the part of a multipart body kept in memory; the rest
	// spills to temporary files.
	MaxMemory int64
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sqlx.DB, uploads *upload.Storage, opts Options, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{
		DB:        db,
		Uploads:   uploads,
		PublicURL: opts.PublicURL,
		MaxMemory: opts.MaxMemory,
		Log:       log,
	}
	categoriesHandler := &CategoriesHandler{DB: db, Log: log}
	healthHandler := &HealthHandler{DB: db, Log: log}

	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/search", itemsHandler.Search)

	mux.HandleFunc("GET /api/categories", categoriesHandler.List)

	mux.HandleFunc("GET /api/health", healthHandler.Check)

	return mux
}

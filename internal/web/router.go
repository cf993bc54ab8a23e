package web

import (
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/upload"
	webembed "github.com/erazemk/najdeno/web"
)

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sqlx.DB
	Templates *Templates
	Log       *zap.Logger
}

// NewRouter creates the router for the entry page, embedded assets and
// uploaded images.
func NewRouter(db *sqlx.DB, uploads *upload.Storage, log *zap.Logger) (http.Handler, error) {
	templates, err := LoadTemplates(log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		Log:       log,
	}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	prefix := uploads.URLPrefix() + "/"
	mux.Handle("GET "+prefix, http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(uploads.Dir())))))

	mux.HandleFunc("GET /{$}", s.Index)

	return mux, nil
}

// Index handles GET /.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	data := &struct {
		PageData
		Categories []model.Category
		Types      []model.ItemType
	}{
		PageData: PageData{Title: "Lost & Found"},
		Types:    []model.ItemType{model.ItemTypeLost, model.ItemTypeFound, model.ItemTypeSell},
	}

	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		s.Log.Error("failed to list categories", zap.Error(err))
		data.Error = "Categories are currently unavailable."
	}
	data.Categories = categories

	s.Templates.Render(w, "index.html", data)
}

// noDirListing answers 404 for directory paths instead of listing them.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

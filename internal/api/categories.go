package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/erazemk/najdeno/internal/store"
)

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	conn, err := h.DB.Connx(r.Context())
	if err != nil {
		h.Log.Error("acquiring connection", zap.Error(err))
		jsonError(w, h.Log, http.StatusInternalServerError, err.Error())
		return
	}
	defer conn.Close()

	categories, err := store.ListCategories(r.Context(), conn)
	if err != nil {
		h.Log.Error("listing categories", zap.Error(err))
		jsonError(w, h.Log, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, h.Log, http.StatusOK, categories)
}

package api

import (
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/upload"
)

// ItemsHandler handles item listing, search and creation.
type ItemsHandler struct {
	DB        *sqlx.DB
	Uploads   *upload.Storage
	PublicURL string
	MaxMemory int64
	Log       *zap.Logger
}

type createItemResponse struct {
	Success bool        `json:"success"`
	Item    *model.Item `json:"item,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Type:       q.Get("type"),
		CategoryID: q.Get("category_id"),
		Location:   q.Get("location"),
		Status:     q.Get("status"),
	}

	conn, err := h.DB.Connx(r.Context())
	if err != nil {
		h.fail(w, "acquiring connection", err)
		return
	}
	defer conn.Close()

	items, err := store.ListItems(r.Context(), conn, filter, pageFromQuery(q))
	if err != nil {
		h.fail(w, "listing items", err)
		return
	}

	h.attachImageURLs(r, items)
	jsonResponse(w, h.Log, http.StatusOK, items)
}

// Search handles GET /api/search.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	conn, err := h.DB.Connx(r.Context())
	if err != nil {
		h.fail(w, "acquiring connection", err)
		return
	}
	defer conn.Close()

	items, err := store.SearchItems(r.Context(), conn, q.Get("q"), pageFromQuery(q))
	if err != nil {
		h.fail(w, "searching items", err)
		return
	}

	h.attachImageURLs(r, items)
	jsonResponse(w, h.Log, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, h.Log, http.StatusBadRequest, "invalid item id")
		return
	}

	conn, err := h.DB.Connx(r.Context())
	if err != nil {
		h.fail(w, "acquiring connection", err)
		return
	}
	defer conn.Close()

	item, err := store.GetItem(r.Context(), conn, id)
	if err != nil {
		h.fail(w, "getting item", err)
		return
	}
	if item == nil {
		jsonError(w, h.Log, http.StatusNotFound, "item not found")
		return
	}

	h.attachImageURL(r, item)
	jsonResponse(w, h.Log, http.StatusOK, item)
}

// Create handles POST /api/items. The body may be urlencoded or multipart;
// a multipart body may carry an image in the "image" field. Missing fields
// and rejected images are not errors.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.createFailed(w, "parsing form", err)
		return
	}

	input := model.ItemInput{
		Type:        formValue(r, "type"),
		Title:       formValue(r, "title"),
		Description: formValue(r, "description"),
		CategoryID:  formValue(r, "category_id"),
		Location:    formValue(r, "location"),
		ContactInfo: formValue(r, "contact_info"),
		Price:       formValue(r, "price"),
	}
	newItem := input.Normalize()

	// The file is kept even if the insert below fails.
	imageName, err := h.Uploads.Save(formFile(r, "image"))
	if err != nil {
		h.createFailed(w, "saving upload", err)
		return
	}
	if imageName != "" {
		newItem.ImagePath = sql.NullString{String: imageName, Valid: true}
	}

	conn, err := h.DB.Connx(r.Context())
	if err != nil {
		h.createFailed(w, "acquiring connection", err)
		return
	}
	defer conn.Close()

	item, err := store.CreateItem(r.Context(), conn, newItem)
	if err != nil {
		h.createFailed(w, "creating item", err)
		return
	}

	h.attachImageURL(r, item)
	jsonResponse(w, h.Log, http.StatusOK, createItemResponse{Success: true, Item: item})
}

func (h *ItemsHandler) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(h.MaxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// formValue returns the first submitted value for key, or nil if the field
// was not sent.
func formValue(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

func formFile(r *http.Request, key string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[key]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func (h *ItemsHandler) attachImageURLs(r *http.Request, items []model.Item) {
	for i := range items {
		h.attachImageURL(r, &items[i])
	}
}

func (h *ItemsHandler) attachImageURL(r *http.Request, item *model.Item) {
	if item.ImagePath.Valid && item.ImagePath.String != "" {
		item.ImageURL = h.Uploads.URL(baseURL(r, h.PublicURL), item.ImagePath.String)
	}
}

// baseURL returns publicURL if set, otherwise the scheme and host the
// request was made to.
func baseURL(r *http.Request, publicURL string) string {
	if publicURL != "" {
		return publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *ItemsHandler) fail(w http.ResponseWriter, op string, err error) {
	h.Log.Error(op, zap.Error(err))
	jsonError(w, h.Log, http.StatusInternalServerError, err.Error())
}

func (h *ItemsHandler) createFailed(w http.ResponseWriter, op string, err error) {
	h.Log.Error(op, zap.Error(err))
	jsonResponse(w, h.Log, http.StatusInternalServerError, createItemResponse{Error: err.Error()})
}

package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/erazemk/najdeno/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, log *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error("encoding response", zap.Error(err))
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, log *zap.Logger, status int, message string) {
	jsonResponse(w, log, status, map[string]string{"error": message})
}

// queryInt parses an integer query parameter, falling back to def when it is
// missing or malformed.
func queryInt(q url.Values, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// pageFromQuery reads limit and offset, defaulting to 50 and 0.
func pageFromQuery(q url.Values) store.Page {
	return store.Page{
		Limit:  queryInt(q, "limit", store.DefaultLimit),
		Offset: queryInt(q, "offset", 0),
	}
}

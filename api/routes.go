package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rh "github.com/coreybb/itemgate/route-handlers"
	"github.com/coreybb/itemgate/webutil"
)

const (
	getAllItemsPath = "/getAllItems"
	healthCheckPath = "/healthz"
)

// SetupRoutes builds the gateway router. The items endpoint is mounted
// under basePath; an empty basePath or "/" mounts it at the root.
func SetupRoutes(basePath string, itemHandler *rh.ItemHandler) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger) // Log every request
	r.Use(middleware.Recoverer)
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8)) // Default Content-Type

	r.NotFound(webutil.MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		return webutil.ErrNotFound("")
	}))
	r.MethodNotAllowed(webutil.MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		return webutil.ErrMethodNotAllowed("")
	}))

	r.Route(normalizeBasePath(basePath), func(r chi.Router) {
		r.Post(getAllItemsPath, webutil.MakeHandler(itemHandler.HandleGetAllItems))
	})

	r.Get(healthCheckPath, handleHealthCheck)

	return r
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return basePath
}

// handleHealthCheck responds to a liveness probe without touching the sources.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

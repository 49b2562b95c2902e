package api

import (
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/1di210299/Music-Bingo/internal/config"
	"github.com/1di210299/Music-Bingo/internal/reload"
	"github.com/1di210299/Music-Bingo/web"
)

const reloadPath = "/api/v1/reload"

// NewRouter creates the HTTP router serving the game assets from assets.
// hub is only set in debug mode and enables live reload.
func NewRouter(cfg config.Config, assets fs.FS, hub *reload.Hub) http.Handler {
	mux := http.NewServeMux()

	sa := &settingsAPI{cfg: cfg}

	mux.HandleFunc("GET /healthz", health)
	mux.HandleFunc("GET /api/v1/config", sa.get)
	mux.HandleFunc("GET /qr", sa.qr)

	opts := web.Options{
		IndexFile:  cfg.IndexFile,
		BackendURL: cfg.ResolveBackendURL,
	}
	if hub != nil {
		mux.HandleFunc("GET "+reloadPath, hub.HandleWS)
		opts.LiveReloadPath = withBasePath(cfg.BasePath, reloadPath)
	}

	// Game pages and assets, with BACKEND_URL injected into HTML
	mux.Handle("GET /", web.StaticHandler(assets, opts))

	var handler http.Handler = mux

	// If base_path is set, strip the prefix so internal routing works
	// unchanged. Anything outside the prefix is not ours.
	if basePath := cfg.BasePath; basePath != "/" && basePath != "" {
		inner := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != basePath && !strings.HasPrefix(r.URL.Path, basePath+"/") {
				http.NotFound(w, r)
				return
			}
			r.URL.Path = strings.TrimPrefix(r.URL.Path, basePath)
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			r.URL.RawPath = strings.TrimPrefix(r.URL.RawPath, basePath)
			inner.ServeHTTP(w, r)
		})
	}

	return withMiddleware(handler)
}

func withBasePath(basePath, p string) string {
	if basePath == "/" || basePath == "" {
		return p
	}
	return basePath + p
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Recovery
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[http] panic: %v", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		// The backend lives on another origin in most deployments
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)

		log.Printf("[http] %s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

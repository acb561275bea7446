// Package ws serves the assistant over a websocket.
package ws

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

type RouterConfig struct {
	ServiceName    string
	MedicalHomeURL string
	JSONLogs       bool
}

// NewRouter mounts the health and config endpoints and the websocket
// session handler.
func NewRouter(cfg RouterConfig, sessions http.Handler) chi.Router {
	accessLog := httplog.NewLogger(cfg.ServiceName, httplog.Options{
		JSON:    cfg.JSONLogs,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"medical_home_url": cfg.MedicalHomeURL})
	})
	r.Method(http.MethodGet, "/ws", sessions)
	return r
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

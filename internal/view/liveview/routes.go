package liveview

import (
	"embed"
	"net/http"

	"github.com/banshee-data/parking.report/internal/httputil"
)

//go:embed assets/index.html
var assets embed.FS

// AttachRoutes mounts the page, its JSON snapshot, the WebSocket and the
// manual refresh control on mux.
func (s *Server) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/view", s.handleView)
	mux.HandleFunc("/refresh", s.handleRefresh)
	mux.HandleFunc("/ws", s.handleWebSocket)
}

// Handler returns a logging mux with only the live view routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.AttachRoutes(mux)
	return httputil.LoggingMiddleware(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httputil.MethodNotAllowed(w)
		return
	}
	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, "page missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if !s.Refresh() {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "dashboard not running")
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

// Package web provides an HTTP status server for the anybutton daemon.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/anybutton/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	resets     chan<- string
}

// New creates a Server that reads state from the given tracker.
//
// If resets is non-nil, POST /reset queues a button name on it ("" for
// every button). The poll loop owns the buttons and applies the reset.
func New(addr string, tracker *status.Tracker, resets chan<- string) *Server {
	s := &Server{tracker: tracker, resets: resets}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/reset", s.handleReset)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.resets == nil {
		http.Error(w, "reset disabled", http.StatusNotImplemented)
		return
	}

	name := r.URL.Query().Get("button")
	if name != "" && !s.known(name) {
		http.Error(w, "unknown button "+name, http.StatusNotFound)
		return
	}

	select {
	case s.resets <- name:
		w.WriteHeader(http.StatusAccepted)
	default:
		http.Error(w, "reset queue full", http.StatusServiceUnavailable)
	}
}

func (s *Server) known(name string) bool {
	for _, b := range s.tracker.Snapshot().Buttons {
		if b.Name == name {
			return true
		}
	}
	return false
}

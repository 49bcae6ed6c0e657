// Package web provides an HTTP status server for the desk-alarm daemon.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/status"
)

// FrameSource renders the last frame sent to the display.
type FrameSource interface {
	PNG() ([]byte, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	frames     FrameSource
	logger     *zap.SugaredLogger
}

// New creates a Server that reads state from the given tracker. frames
// may be nil, in which case /display.png is not served.
func New(addr string, tracker *status.Tracker, frames FrameSource, logger *zap.SugaredLogger) *Server {
	s := &Server{tracker: tracker, frames: frames, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	if frames != nil {
		mux.HandleFunc("/display.png", s.handleDisplay)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: cors.Default().Handler(mux),
	}
	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
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
	if err := renderHTML(w, snap, s.frames != nil); err != nil {
		s.logger.Warnw("render status page", "error", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	data, err := s.frames.PNG()
	if err != nil {
		s.logger.Warnw("encode display frame", "error", err)
		http.Error(w, "display unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

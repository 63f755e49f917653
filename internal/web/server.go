package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"ytqa/internal/logging"
	"ytqa/internal/transcript"
)

//go:embed assets/index.html.tmpl
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html.tmpl"))

// Actions are the pipeline operations exposed over HTTP.
type Actions interface {
	Transcribe(ctx context.Context, sessionID, url string) (transcript.Transcript, error)
	Ask(ctx context.Context, sessionID, question string) (string, error)
	Segments(ctx context.Context, sessionID string) (transcript.Transcript, error)
}

// Server is the browser UI and JSON API.
type Server struct {
	bind    string
	actions Actions
	metrics http.Handler
	logger  *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New constructs a Server. metricsHandler may be nil.
func New(bind string, actions Actions, metricsHandler http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		bind:    strings.TrimSpace(bind),
		actions: actions,
		metrics: metricsHandler,
		logger:  logging.NewComponentLogger(logger, "web"),
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Transcription of long videos can take many minutes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /transcribe", s.handleTranscribePage)
	mux.HandleFunc("POST /ask", s.handleAskPage)
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribeAPI)
	mux.HandleFunc("POST /api/ask", s.handleAskAPI)
	mux.HandleFunc("GET /api/segments", s.handleSegmentsAPI)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return s.withRequestLogging(mux)
}

// Start listens on the bind address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return fmt.Errorf("server bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("web server listening",
		logging.String(logging.FieldEventType, "server_start"),
		logging.String("address", "http://"+listener.Addr().String()),
	)
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

// Package server exposes the chat over HTTP with a small browser page.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gubarz/focusflow/internal/llm"
	"github.com/gubarz/focusflow/internal/parser"
	"github.com/gubarz/focusflow/internal/render"
)

// MaxBodyBytes caps JSON request bodies
const MaxBodyBytes = 4 << 20

//go:embed index.html
var indexHTML []byte

// Options configures the handlers
type Options struct {
	MaxInput  int
	Highlight bool
	CodeStyle string
}

// Server routes the chat page and its JSON API
type Server struct {
	opts      Options
	generator llm.Generator
	mux       *http.ServeMux
}

// New builds the handler tree around generator
func New(opts Options, generator llm.Generator) *Server {
	s := &Server{opts: opts, generator: generator, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /{$}", s.IndexHandler)
	s.mux.HandleFunc("POST /api/chat", s.ChatHandler)
	s.mux.HandleFunc("POST /api/render", s.RenderHandler)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("elapsed", time.Since(start)).
		Msg("request")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

// ChatResponse is one generated reply, raw and rendered
type ChatResponse struct {
	ID        string    `json:"id"`
	Mode      llm.Mode  `json:"mode"`
	Content   string    `json:"content"`
	HTML      string    `json:"html"`
	Timestamp time.Time `json:"timestamp"`
}

type renderRequest struct {
	Text string `json:"text"`
}

type renderResponse struct {
	HTML string `json:"html"`
}

func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mode := llm.Brainstorm
	if req.Mode != "" {
		m, err := llm.ParseMode(req.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}

	if err := llm.ValidateInput(req.Message, s.opts.MaxInput); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	content, err := s.generator.Generate(r.Context(), req.Message, mode)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Str("mode", string(mode)).Msg("generation failed")
		http.Error(w, "failed to generate a response", http.StatusBadGateway)
		return
	}

	writeJSON(w, ChatResponse{
		ID:        uuid.NewString(),
		Mode:      mode,
		Content:   content,
		HTML:      s.html(content),
		Timestamp: time.Now(),
	})
}

func (s *Server) RenderHandler(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, renderResponse{HTML: s.html(req.Text)})
}

func (s *Server) html(text string) string {
	return render.HTML(parser.Parse(text), render.HTMLOptions{
		Highlight: s.opts.Highlight,
		CodeStyle: s.opts.CodeStyle,
	})
}

// decodeJSON reads at most MaxBodyBytes into v, writing the error response
// itself when it fails
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting web server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package http exposes the kernel over HTTP with chi.
//
//	POST   /commands                 handle a command
//	POST   /sessions/{id}/response   resume a suspended session
//	GET    /sessions                 list suspended sessions
//	GET    /sessions/{id}            inspect a suspended session
//	DELETE /sessions/{id}            evict a suspended session
//	GET    /state                    current State
//	GET    /events                   SSE stream of effects and state diffs
//	GET    /metrics                  Prometheus metrics, when configured
//	GET    /health, /info
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/aretw0/gambit/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// SessionDirectory is the part of the interaction registry the server needs.
type SessionDirectory interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, sessionID string) (*domain.SessionContext, error)
	Evict(ctx context.Context, sessionID, reason string) error
}

// Server serves the kernel.
type Server struct {
	proc     ports.CommandProcessor
	sessions SessionDirectory
	effects  ports.EffectSink
	metrics  http.Handler
	codec    *codec.Codec
	streams  *StreamManager
	logger   *slog.Logger
	version  string

	// mu orders commands so published diffs match the order of results.
	mu sync.Mutex
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the /sessions routes.
func WithSessions(d SessionDirectory) Option {
	return func(s *Server) {
		s.sessions = d
	}
}

// WithEffects streams effects from sink on /events.
func WithEffects(sink ports.EffectSink) Option {
	return func(s *Server) {
		s.effects = sink
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithCodec sets the codec used to encode State and sessions.
func WithCodec(c *codec.Codec) Option {
	return func(s *Server) {
		s.codec = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a Server. Call Close to stop following the effect sink.
func NewServer(proc ports.CommandProcessor, opts ...Option) *Server {
	s := &Server{
		proc:    proc,
		codec:   codec.Default(),
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(64, s.logger)
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.health)
	r.Get("/info", s.info)
	r.Get("/state", s.state)
	r.Post("/commands", s.handleCommand)
	r.Get("/events", s.events)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Get("/{id}", s.getSession)
		r.Delete("/{id}", s.deleteSession)
		r.Post("/{id}/response", s.resume)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Follow forwards effects from the sink to SSE clients until the returned func is called.
func (s *Server) Follow() (stop func()) {
	if s.effects == nil {
		return func() {}
	}
	return s.effects.Subscribe(func(e domain.Effect) {
		data, err := json.Marshal(e)
		if err != nil {
			s.logger.Warn("failed to encode effect", "err", err)
			return
		}
		s.streams.Broadcast(Message{Event: "effect", Data: string(data)})
	})
}

// Streams exposes the SSE stream manager.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "gambit-http",
		"version": strings.TrimSpace(s.version),
	})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	data, err := s.codec.EncodeState(s.proc.State())
	if err != nil {
		s.fault(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleCommand handles POST /commands.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd domain.Command
	if err := decodeBody(w, r, &cmd); err != nil {
		s.badRequest(w, r, err)
		return
	}

	s.mu.Lock()
	before := s.proc.State()
	res, err := s.proc.Handle(r.Context(), cmd)
	if err == nil {
		s.publishDiff(before)
	}
	s.mu.Unlock()

	if err != nil {
		s.fault(w, r, err)
		return
	}
	s.writeResult(w, res)
}

type responseBody struct {
	Data      map[string]any `json:"data,omitempty"`
	Cancelled bool           `json:"cancelled,omitempty"`
}

// resume handles POST /sessions/{id}/response.
func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	var body responseBody
	if err := decodeBody(w, r, &body); err != nil {
		s.badRequest(w, r, err)
		return
	}
	resp := domain.InteractionResponse{
		SessionID: chi.URLParam(r, "id"),
		Data:      body.Data,
		Cancelled: body.Cancelled,
	}

	s.mu.Lock()
	before := s.proc.State()
	res, err := s.proc.Resume(r.Context(), resp)
	if err == nil {
		s.publishDiff(before)
	}
	s.mu.Unlock()

	if err != nil {
		s.fault(w, r, err)
		return
	}
	s.writeResult(w, res)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.Error(w, "sessions are not exposed", http.StatusNotImplemented)
		return
	}
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fault(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.Error(w, "sessions are not exposed", http.StatusNotImplemented)
		return
	}
	sc, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fault(w, r, err)
		return
	}
	data, err := codec.EncodeSession(sc)
	if err != nil {
		s.fault(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.Error(w, "sessions are not exposed", http.StatusNotImplemented)
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		s.fault(w, r, err)
		return
	}
	if err := s.sessions.Evict(r.Context(), id, session.ReasonRemoved); err != nil {
		s.fault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// events handles GET /events (SSE). The optional "watch" query parameter
// filters by event name: effect, diff.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	watch := map[string]bool{}
	for _, name := range strings.Split(r.URL.Query().Get("watch"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			watch[name] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE client connected", "request_id", middleware.GetReqID(r.Context()))

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "request_id", middleware.GetReqID(r.Context()))
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[msg.Event] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

func (s *Server) publishDiff(before domain.State) {
	diff := domain.Diff(&before, s.proc.State())
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Warn("failed to encode state diff", "err", err)
		return
	}
	s.streams.Broadcast(Message{Event: "diff", Data: string(data)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// statusFor maps result statuses to HTTP codes.
func statusFor(res domain.CommandResult) int {
	switch res.Status {
	case domain.StatusSuspended:
		return http.StatusAccepted
	case domain.StatusFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func (s *Server) writeResult(w http.ResponseWriter, res domain.CommandResult) {
	s.writeJSON(w, statusFor(res), res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
	http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
}

func (s *Server) fault(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

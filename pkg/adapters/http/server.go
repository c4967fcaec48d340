// Package http exposes the planner as a JSON API with an SSE stream of conversation changes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const requestTimeout = 60 * time.Second

// Planner is the part of waypoint.Client the server needs.
type Planner interface {
	Process(ctx context.Context, req domain.TurnRequest) (*domain.TurnResponse, error)
	Converse(ctx context.Context, id string, in waypoint.TurnInput) (*domain.TurnResponse, error)
	Conversation(ctx context.Context, id string) (*domain.Conversation, error)
	Conversations(ctx context.Context) ([]string, error)
	DeleteConversation(ctx context.Context, id string) error
	Activity(ctx context.Context, id string) (*domain.Activity, []domain.Task, error)
	Catalog() *catalog.Catalog
}

// Server holds the handlers.
type Server struct {
	Planner Planner
	Streams *StreamManager

	logger         *slog.Logger
	metrics        http.Handler
	allowedOrigins []string
	maxInputSize   int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithAllowedOrigins sets the CORS origins (default "*").
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMaxInputSize overrides runner.DefaultMaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewHandler creates the HTTP handler for p.
func NewHandler(p Planner, opts ...Option) http.Handler {
	s := &Server{
		Planner:        p,
		logger:         logging.NewNop(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// The event stream is long-lived and stays outside the timeout group.
		r.Get("/conversations/{id}/events", s.SubscribeEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/catalog", s.GetCatalog)
			r.Post("/process", s.Process)
			r.Get("/conversations", s.ListConversations)
			r.Post("/conversations", s.StartConversation)
			r.Get("/conversations/{id}", s.GetConversation)
			r.Delete("/conversations/{id}", s.DeleteConversation)
			r.Post("/conversations/{id}/turns", s.Turn)
			r.Get("/activities/{id}", s.GetActivity)
			r.Get("/activities/{id}/tasks", s.GetActivityTasks)
		})
	})
	return r
}

// turnBody is the body of the session-backed endpoints.
type turnBody struct {
	ID      string              `json:"id,omitempty"`
	Input   string              `json:"input"`
	Mode    domain.Mode         `json:"mode,omitempty"`
	Domain  string              `json:"domain,omitempty"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
}

// Process handles POST /v1/process: a stateless turn.
func (s *Server) Process(w http.ResponseWriter, r *http.Request) {
	var req domain.TurnRequest
	if !s.decode(w, r, &req) {
		return
	}
	clean, ok := s.sanitize(w, req.Input)
	if !ok {
		return
	}
	req.Input = clean

	resp, err := s.Planner.Process(r.Context(), req)
	if err != nil {
		s.fail(w, "Process", err)
		return
	}
	s.broadcast(req.Conversation, resp.Conversation)
	s.respond(w, http.StatusOK, resp)
}

// StartConversation handles POST /v1/conversations. A missing id gets a UUID.
func (s *Server) StartConversation(w http.ResponseWriter, r *http.Request) {
	var body turnBody
	if !s.decode(w, r, &body) {
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	_, err := s.Planner.Conversation(r.Context(), body.ID)
	switch {
	case err == nil:
		s.respondError(w, http.StatusConflict, fmt.Sprintf("conversation %q already exists", body.ID))
		return
	case !errors.Is(err, domain.ErrSessionNotFound):
		s.fail(w, "StartConversation", err)
		return
	}
	s.turn(w, r, body.ID, body, http.StatusCreated)
}

// Turn handles POST /v1/conversations/{id}/turns.
func (s *Server) Turn(w http.ResponseWriter, r *http.Request) {
	var body turnBody
	if !s.decode(w, r, &body) {
		return
	}
	s.turn(w, r, chi.URLParam(r, "id"), body, http.StatusOK)
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request, id string, body turnBody, status int) {
	clean, ok := s.sanitize(w, body.Input)
	if !ok {
		return
	}

	var before *domain.Conversation
	if s.Streams.HasSubscribers(id) {
		before, _ = s.Planner.Conversation(r.Context(), id)
	}

	resp, err := s.Planner.Converse(r.Context(), id, waypoint.TurnInput{
		Input:      clean,
		Mode:       body.Mode,
		DomainHint: body.Domain,
		Profile:    body.Profile,
	})
	if err != nil {
		s.fail(w, "Turn", err)
		return
	}
	s.broadcast(before, resp.Conversation)
	s.respond(w, status, resp)
}

// ListConversations handles GET /v1/conversations.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Planner.Conversations(r.Context())
	if err != nil {
		s.fail(w, "ListConversations", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.respond(w, http.StatusOK, map[string][]string{"conversations": ids})
}

// GetConversation handles GET /v1/conversations/{id}.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.Planner.Conversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetConversation", err)
		return
	}
	s.respond(w, http.StatusOK, conv)
}

// DeleteConversation handles DELETE /v1/conversations/{id}.
func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.Planner.DeleteConversation(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteConversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetActivity handles GET /v1/activities/{id}.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	activity, _, err := s.Planner.Activity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetActivity", err)
		return
	}
	s.respond(w, http.StatusOK, activity)
}

// GetActivityTasks handles GET /v1/activities/{id}/tasks.
func (s *Server) GetActivityTasks(w http.ResponseWriter, r *http.Request) {
	_, tasks, err := s.Planner.Activity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetActivityTasks", err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	s.respond(w, http.StatusOK, map[string][]domain.Task{"tasks": tasks})
}

// GetCatalog handles GET /v1/catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.Planner.Catalog())
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"app":     "waypoint-http",
		"version": waypoint.Version,
	})
}

// SubscribeEvents handles GET /v1/conversations/{id}/events. Each event is an RFC 7386
// merge patch from the previous conversation to the new one. The optional watch query
// (comma separated top-level fields such as slots,phase) drops patches touching none of them.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	id := chi.URLParam(r, "id")

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		for _, f := range strings.Split(q, ",") {
			if f = strings.TrimSpace(f); f != "" {
				watch = append(watch, f)
			}
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	s.logger.Info("SSE: Subscribed", "conversation_id", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "conversation_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !touches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func touches(patch string, fields []string) bool {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(patch), &top); err != nil {
		return true
	}
	for _, f := range fields {
		if _, ok := top[f]; ok {
			return true
		}
	}
	return false
}

// broadcast publishes the merge patch between before and after. A nil before diffs
// against an empty object.
func (s *Server) broadcast(before, after *domain.Conversation) {
	if after == nil || after.ID == "" || !s.Streams.HasSubscribers(after.ID) {
		return
	}
	prev := []byte("{}")
	if before != nil {
		data, err := json.Marshal(before)
		if err != nil {
			return
		}
		prev = data
	}
	next, err := json.Marshal(after)
	if err != nil {
		return
	}
	patch, err := jsonpatch.CreateMergePatch(prev, next)
	if err != nil {
		s.logger.Warn("SSE: Failed to build patch", "conversation_id", after.ID, "err", err)
		return
	}
	if string(patch) == "{}" {
		return
	}
	s.Streams.Broadcast(after.ID, string(patch))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) sanitize(w http.ResponseWriter, input string) (string, bool) {
	if input == "" {
		return "", true
	}
	clean, err := runner.SanitizeInput(input, s.maxInputSize)
	if err != nil {
		s.logger.Warn("Input rejected", "err", err, "size", len(input))
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
		return "", false
	}
	return clean, true
}

// StatusFor maps planner errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrActivityNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrModeChanged):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidMode), errors.Is(err, domain.ErrMalformedState), errors.Is(err, domain.ErrUnknownDomain):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, map[string]string{"error": msg})
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

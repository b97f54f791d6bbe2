package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/internal/logging"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/aretw0/viben/pkg/tutor"
)

// Service is the pipeline surface the API exposes. *viben.Pipeline satisfies it.
type Service interface {
	Generate(ctx context.Context, recordID string, opts viben.GenerateOptions) (*viben.GenerateResult, error)
	Save(ctx context.Context, t *domain.Tutorial) error
	Update(ctx context.Context, t *domain.Tutorial) error
	Load(ctx context.Context, id string) (*domain.Tutorial, error)
	List(ctx context.Context) ([]domain.TutorialSummary, error)
	FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error)
	Delete(ctx context.Context, id string) error
	Record(ctx context.Context, id string) (*domain.SourceRecord, error)
	Records(ctx context.Context, q ports.RecordQuery) (*domain.RecordPage, error)
	Resume(ctx context.Context, id string, st playback.State, opts ...playback.Option) (*playback.Session, error)
	Ask(ctx context.Context, cc tutor.CardContext, messages []domain.ChatMessage) (string, error)
}

var _ Service = (*viben.Pipeline)(nil)

// Server serves the tutorial API.
type Server struct {
	svc         Service
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	streams     *StreamManager
	autoAdvance time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer sets the registry served on /metrics (default: the global registry).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithStreams shares a StreamManager whose Hooks are wired into the pipeline.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithAutoAdvance sets the delay reported for pending choice advances.
func WithAutoAdvance(d time.Duration) Option {
	return func(s *Server) {
		s.autoAdvance = d
	}
}

// NewHandler creates the HTTP handler for the pipeline.
func NewHandler(svc Service, opts ...Option) (http.Handler, error) {
	s := &Server{
		svc:         svc,
		logger:      logging.NewNop(),
		gatherer:    prometheus.DefaultGatherer,
		autoAdvance: playback.DefaultAutoAdvance,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}

	router, err := newRouter()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(s.requestValidator(router))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/events", s.SubscribeEvents)

	r.Route("/tutorials", func(r chi.Router) {
		r.Get("/", s.ListTutorials)
		r.Post("/", s.CreateTutorial)
		r.Get("/{id}", s.GetTutorial)
		r.Put("/{id}", s.UpdateTutorial)
		r.Delete("/{id}", s.DeleteTutorial)
		r.Post("/{id}/play", s.Play)
	})
	r.Post("/generate", s.Generate)
	r.Get("/records", s.ListRecords)
	r.Get("/records/{id}", s.GetRecord)
	r.Post("/chat", s.Chat)

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "viben-http",
		"version":     strings.TrimSpace(viben.Version),
		"api_version": apiVersion,
	})
}

// ListTutorials handles GET /tutorials. With ?recordId it answers
// {"tutorial": ...}, null when no tutorial was generated from the record.
func (s *Server) ListTutorials(w http.ResponseWriter, r *http.Request) {
	if recordID := r.URL.Query().Get("recordId"); recordID != "" {
		t, err := s.svc.FindBySourceRecordID(r.Context(), recordID)
		if err != nil && !isNotFound(err) {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]*domain.Tutorial{"tutorial": t})
		return
	}

	list, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.TutorialSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateTutorial handles POST /tutorials.
func (s *Server) CreateTutorial(w http.ResponseWriter, r *http.Request) {
	var t domain.Tutorial
	if !s.decode(w, r, &t) {
		return
	}
	if err := s.svc.Save(r.Context(), &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ack{OK: true, ID: t.ID})
}

// GetTutorial handles GET /tutorials/{id}.
func (s *Server) GetTutorial(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTutorial handles PUT /tutorials/{id}. The tutorial must already exist.
func (s *Server) UpdateTutorial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var t domain.Tutorial
	if !s.decode(w, r, &t) {
		return
	}
	if t.ID != id {
		s.writeError(w, r, domain.NewShapeError("id", "does not match the path"))
		return
	}
	if err := s.svc.Update(r.Context(), &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack{OK: true, ID: t.ID})
}

// DeleteTutorial handles DELETE /tutorials/{id}.
func (s *Server) DeleteTutorial(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	RecordID string `json:"recordId"`
	Force    bool   `json:"force"`
}

type generateResponse struct {
	Tutorial *domain.Tutorial `json:"tutorial"`
	Reused   bool             `json:"reused"`
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.Generate(r.Context(), req.RecordID, viben.GenerateOptions{Force: req.Force})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Tutorial: res.Tutorial, Reused: res.Reused})
}

// ListRecords handles GET /records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := ports.RecordQuery{
		Offset:     q.Get("offset"),
		Tag:        q.Get("tag"),
		Difficulty: q.Get("difficulty"),
		Search:     q.Get("search"),
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "pageSize must be an integer"})
			return
		}
		query.PageSize = n
	}
	page, err := s.svc.Records(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page.Records == nil {
		page.Records = []domain.SourceRecord{}
	}
	writeJSON(w, http.StatusOK, page)
}

// GetRecord handles GET /records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Record(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type playRequest struct {
	State playback.State  `json:"state"`
	Event *playback.Event `json:"event,omitempty"`
}

// Play handles POST /tutorials/{id}/play. The client sends back the state it
// last received plus one event; the response carries the next state and the
// sanitized card to show. A pending advance is resolved by sending a resolve
// event with its seq once autoAdvanceMs has elapsed.
func (s *Server) Play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.svc.Resume(r.Context(), chi.URLParam(r, "id"), req.State, playback.WithAutoAdvance(s.autoAdvance))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var pending *playback.Pending
	if req.Event != nil {
		pending, err = sess.Apply(*req.Event)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	view, err := sess.View(pending)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type chatRequest struct {
	Messages    []domain.ChatMessage `json:"messages"`
	CardContext tutor.CardContext    `json:"cardContext"`
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	reply, err := s.svc.Ask(r.Context(), req.CardContext, req.Messages)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

type ack struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

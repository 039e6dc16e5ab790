package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/metrics"
)

// DefaultMaxBodyBytes caps a pushed snapshot.
const DefaultMaxBodyBytes = 32 << 20

// SyncStore holds the per-device datasets.
type SyncStore interface {
	GetFull(ctx context.Context, deviceID string) (checklist.Snapshot, error)
	ReplaceFull(ctx context.Context, deviceID string, snap checklist.Snapshot) error
}

// Options configures the backend router.
type Options struct {
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	CORSOrigins  []string
	MaxBodyBytes int64
}

// Server serves the sync API.
type Server struct {
	store        SyncStore
	metrics      *metrics.Metrics
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewServer creates the backend router.
func NewServer(store SyncStore, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	srv := &Server{store: store, metrics: opts.Metrics, logger: logger, maxBodyBytes: maxBody}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(srv.observe)
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORSMiddleware(opts.CORSOrigins))
	}

	r.Get("/api/v1/healthz", srv.handleHealth)
	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(DeviceMiddleware)
		r.Get("/full", srv.handleGetFull)
		r.Post("/full", srv.handlePostFull)
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	return r
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if strings.HasPrefix(r.URL.Path, "/api/v1/sync") {
			s.metrics.BackendRequest(r.Method, status)
		}
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "request",
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleGetFull(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := DeviceFromContext(r.Context())

	snap, err := s.store.GetFull(r.Context(), deviceID)
	if err != nil {
		s.logger.Error("failed to load snapshot", "device_id", deviceID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "failed to load data")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePostFull(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := DeviceFromContext(r.Context())

	var snap checklist.Snapshot
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&snap); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		writeDetail(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}
	if msg := validateSnapshot(snap); msg != "" {
		writeDetail(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if err := s.store.ReplaceFull(r.Context(), deviceID, snap); err != nil {
		s.logger.Error("failed to store snapshot", "device_id", deviceID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "failed to store data")
		return
	}
	s.logger.Info("snapshot stored", "device_id", deviceID, "lists", len(snap.Lists), "entries", len(snap.Entries))
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func validateSnapshot(snap checklist.Snapshot) string {
	for _, l := range snap.Lists {
		if l.ID == "" {
			return "list without ListId"
		}
	}
	for _, e := range snap.Entries {
		if e.ID == "" || e.ListID == "" || e.SpeciesID == "" {
			return "entry requires EntryId, ListId and SpeciesId"
		}
	}
	return ""
}

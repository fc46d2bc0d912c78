// Package worker provides the HTTP worker service for identitymap.
package worker

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JustKeepShipping/identitymap/internal/catalog"
	"github.com/JustKeepShipping/identitymap/internal/config"
	"github.com/JustKeepShipping/identitymap/internal/db/store"
	"github.com/JustKeepShipping/identitymap/internal/ranking"
	"github.com/JustKeepShipping/identitymap/internal/worker/sse"
)

// Service wires the stores, similarity ranking and SSE broadcasting behind a
// chi router.
type Service struct {
	version      string
	config       *config.Config
	store        *store.Store
	workshops    *store.WorkshopStore
	participants *store.ParticipantStore
	identities   *store.IdentityStore
	search       *store.TextSearchStore
	catalog      *catalog.Registry
	ranker       *ranking.Ranker
	broadcaster  *sse.Broadcaster
	router       *chi.Mux
	metrics      *Metrics
	startTime    time.Time
}

// NewService creates a Service on top of an opened store.
func NewService(version string, cfg *config.Config, st *store.Store, cat *catalog.Registry) *Service {
	identities := store.NewIdentityStore(st)

	svc := &Service{
		version:      version,
		config:       cfg,
		store:        st,
		workshops:    store.NewWorkshopStore(st),
		participants: store.NewParticipantStore(st),
		identities:   identities,
		search:       store.NewTextSearchStore(st),
		catalog:      cat,
		ranker:       ranking.New(identities),
		broadcaster:  sse.NewBroadcaster(),
		router:       chi.NewRouter(),
		metrics:      NewMetrics(),
		startTime:    time.Now(),
	}
	svc.routes()
	return svc
}

// Router returns the HTTP handler for the service.
func (s *Service) Router() http.Handler {
	return s.router
}

func (s *Service) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.countRequests)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/workshops", func(r chi.Router) {
			r.Post("/", s.handleCreateWorkshop)
			r.Post("/join", s.handleJoinWorkshop)
			r.Get("/{workshopID}", s.handleGetWorkshop)
			r.Get("/{workshopID}/participants", s.handleListParticipants)
			r.Get("/{workshopID}/rankings", s.handleRankings)
			r.Get("/{workshopID}/search", s.handleSearch)
			r.Get("/{workshopID}/catalog", s.handleCatalog)
			r.Get("/{workshopID}/events", s.handleEvents)
		})

		r.Route("/participants/{participantID}", func(r chi.Router) {
			r.Get("/identity", s.handleGetIdentity)
			r.Put("/lenses/{lens}/tags", s.handleReplaceTags)
			r.Put("/lenses/{lens}/texts", s.handleReplaceTexts)
			r.Delete("/", s.handleLeave)
		})

		r.Get("/compare", s.handleCompare)
	})
}

func (s *Service) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.RecordRequest()
		next.ServeHTTP(w, r)
	})
}

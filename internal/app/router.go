package app

import (
	"database/sql"
	"net/http"
	"time"

	"testshare/internal/app/observability"
	"testshare/internal/catalog"
	"testshare/internal/review"
	"testshare/internal/roster"
	"testshare/internal/store"
	"testshare/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the HTTP surface. sqlDB is nil when the memory store
// is selected; it only feeds the db gauges on /metrics.
func NewRouter(cfg Config, st store.Store, sqlDB *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	collector := observability.NewCollector(sqlDB)
	r.Use(collector.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", csrfHeaderName},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	rosterHandler := roster.NewHandler(roster.NewService(st))
	catalogHandler := catalog.NewHandler(catalog.NewService(st))
	submissionHandler := submission.NewHandler(submission.NewService(st))
	reviewHandler := review.NewHandler(review.NewService(st))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", collector.MetricsHandler)

	limiter := NewIPRateLimiter(cfg.RateLimitPerMin, time.Minute)

	r.Route("/api", func(api chi.Router) {
		api.Use(RateLimitMiddleware(limiter))
		api.Use(CSRFMiddleware(cfg.CSRFEnforced))

		// The {creator} segment is shared by the username lookup and the
		// per-creator tests listing, so both routes use one param name.
		api.Post("/creators", rosterHandler.CreateCreator)
		api.Get("/creators/{creator}", rosterHandler.GetCreatorByUsername)
		api.Get("/creators/{creator}/tests", catalogHandler.ListByCreator)

		api.Post("/takers", rosterHandler.CreateTaker)
		api.Get("/takers/{id}", rosterHandler.GetTaker)

		api.Post("/tests", catalogHandler.Create)
		api.Get("/tests/share/{shareCode}", catalogHandler.GetByShareCode)
		api.Get("/tests/{id}", catalogHandler.Get)
		api.Put("/tests/{id}", catalogHandler.Update)
		api.Delete("/tests/{id}", catalogHandler.Delete)
		api.Get("/tests/{id}/submissions", submissionHandler.ListByTest)

		api.Post("/submissions", submissionHandler.Create)
		api.Get("/submissions/{id}", submissionHandler.Get)
		api.Get("/submissions/{id}/review-requests", reviewHandler.ListBySubmission)

		api.Post("/review-requests", reviewHandler.Create)
		api.Put("/review-requests/{id}", reviewHandler.Adjudicate)
	})

	return r
}

// Package http exposes the record and analytics services as a JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mysphere/internal/analytics"
	"mysphere/internal/cache"
	"mysphere/internal/config"
	"mysphere/internal/log"
	"mysphere/internal/middleware/ratelimit"
	"mysphere/internal/middleware/security"
	"mysphere/internal/middleware/trace"
	"mysphere/internal/period"
	"mysphere/internal/services"
	"mysphere/internal/storage"
)

const (
	cacheCleanupInterval = 5 * time.Minute
	publishQueueSize     = 256
	publishTimeout       = 5 * time.Second
)

// Options carries the collaborators that are not derived from configuration.
type Options struct {
	// Clock defaults to the wall clock in the configured time zone.
	Clock period.Clock
	// Publisher announces record changes; nil disables events.
	Publisher services.EventPublisher
	Logger    *log.Logger
}

type Server struct {
	http.Server

	cfg          *config.Config
	repo         *storage.SQLiteRepository
	clock        period.Clock
	loc          *time.Location
	started      time.Time
	workoutStart time.Time

	expenses    *services.ExpenseService
	bodyWeights *services.BodyWeightService
	wholesale   *services.WholesaleService

	expenseStats    *analytics.ExpenseService
	bodyWeightStats *analytics.BodyWeightService
	wholesaleStats  *analytics.WholesaleService

	analyticsCache *cache.LRUCache[any]
	cacheManager   *cache.Manager
	publisher      *services.AsyncPublisher
	limiter        *ratelimit.Limiter
	tracer         *trace.Middleware
	detector       *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires services over repo and returns a server ready to listen on
// the configured port.
func NewServer(cfg *config.Config, repo *storage.SQLiteRepository, opts Options) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}
	workoutStart, err := cfg.WorkoutStart()
	if err != nil {
		return nil, fmt.Errorf("parse workout start date: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = period.SystemClock{Location: loc}
	}

	s := &Server{
		cfg:            cfg,
		repo:           repo,
		clock:          clock,
		loc:            loc,
		started:        time.Now(),
		workoutStart:   workoutStart,
		analyticsCache: cache.NewLRUCache[any](cfg.AnalyticsCacheSize, cfg.AnalyticsCacheTTL),
		cacheManager:   cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			Requests: cfg.RateLimitRequests,
			Window:   cfg.RateLimitWindow,
		}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	deps := services.Deps{Clock: clock, Cache: s.analyticsCache}
	if opts.Publisher != nil {
		s.publisher = services.NewAsyncPublisher(opts.Publisher, publishQueueSize, publishTimeout)
		deps.Publisher = s.publisher
	}
	s.expenses = services.NewExpenseService(repo.Expenses, deps)
	s.bodyWeights = services.NewBodyWeightService(repo.BodyWeights, deps)
	s.wholesale = services.NewWholesaleService(repo.Wholesale, deps)

	s.expenseStats = analytics.NewExpenseService(repo.Expenses, clock)
	s.bodyWeightStats = analytics.NewBodyWeightService(repo.BodyWeights, clock)
	s.wholesaleStats = analytics.NewWholesaleService(repo.Wholesale, clock)

	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(security.CORS(security.DefaultCORSConfig(s.cfg.FrontendURL)))
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log.FromContext(ctx).WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		respondFail(w, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
	}))
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(requestTimeout(s.cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondFail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondFail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/analytics/summary", s.handleExpenseSummary)
			r.Get("/analytics/trends", s.handleExpenseTrends)
			r.Get("/analytics/top-categories", s.handleTopCategories)
			r.Get("/analytics/stats", s.handleExpenseStats)
			r.Get("/categories/list", handleCategories)
			r.Get("/payment-types/list", handlePaymentTypes)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/body-weight", func(r chi.Router) {
			r.Get("/", s.handleListBodyWeights)
			r.Post("/", s.handleCreateBodyWeight)
			r.Get("/recent", s.handleRecentBodyWeights)
			r.Get("/analytics/summary", s.handleBodyWeightSummary)
			r.Get("/analytics/trends", s.handleBodyWeightTrends)
			r.Get("/analytics/stats", s.handleBodyWeightStats)
			r.Get("/{id}", s.handleGetBodyWeight)
			r.Put("/{id}", s.handleUpdateBodyWeight)
			r.Delete("/{id}", s.handleDeleteBodyWeight)
		})

		r.Route("/wholesale", func(r chi.Router) {
			r.Get("/", s.handleListWholesale)
			r.Post("/", s.handleCreateWholesale)
			r.Get("/recent", s.handleRecentWholesale)
			r.Get("/analytics/summary", s.handleWholesaleSummary)
			r.Get("/analytics/trends", s.handleWholesaleTrends)
			r.Get("/analytics/stats", s.handleWholesaleStats)
			r.Get("/analytics/tips", s.handleWholesaleTips)
			r.Get("/{id}", s.handleGetWholesale)
			r.Put("/{id}", s.handleUpdateWholesale)
			r.Delete("/{id}", s.handleDeleteWholesale)
		})

		r.Get("/workouts/stats", s.handleWorkoutStats)
	})

	return r
}

// requestTimeout bounds the context handed to handlers.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Shutdown stops the background cleanup goroutines, drains the listener and
// then flushes queued record events.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		if s.publisher != nil {
			err = errors.Join(err, s.publisher.Close(ctx))
		}
	})
	return err
}

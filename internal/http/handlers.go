package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mysphere/internal/analytics"
	"mysphere/internal/cache"
	"mysphere/internal/core"
	"mysphere/internal/log"
)

const apiVersion = "1.0.0"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "MySphere Backend API",
		"version": apiVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"health":     "/api/health",
			"expenses":   "/api/expenses",
			"bodyWeight": "/api/body-weight",
			"wholesale":  "/api/wholesale",
			"workouts":   "/api/workouts/stats",
		},
	})
}

// handleHealth reports liveness. A failing database ping turns it into 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentHTTP).WarnContext(ctx, "Health check failed",
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err)
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleWorkoutStats(w http.ResponseWriter, r *http.Request) {
	progress := analytics.Progress(s.workoutStart, s.clock.Now(), s.cfg.WorkoutsPerWeek)
	respondData(w, http.StatusOK, "", progress)
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", core.CategoryOptions)
}

func handlePaymentTypes(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", core.PaymentTypeOptions)
}

// Record handlers shared by every kind.

func createRecord[R, In any](s *Server, w http.ResponseWriter, r *http.Request, res resource, create func(context.Context, In) (R, error)) {
	var in In
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, res, err)
		return
	}
	rec, err := create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, res, err)
		return
	}
	respondData(w, http.StatusCreated, res.label+" created successfully", rec)
}

func getRecord[R any](s *Server, w http.ResponseWriter, r *http.Request, res resource, get func(context.Context, string) (R, error)) {
	rec, err := get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, res, err)
		return
	}
	respondData(w, http.StatusOK, "", rec)
}

func updateRecord[R, In any](s *Server, w http.ResponseWriter, r *http.Request, res resource, update func(context.Context, string, In) (R, error)) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, res, err)
		return
	}
	var in In
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, res, err)
		return
	}
	rec, err := update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, res, err)
		return
	}
	respondData(w, http.StatusOK, res.label+" updated successfully", rec)
}

func deleteRecord(s *Server, w http.ResponseWriter, r *http.Request, res resource, del func(context.Context, string) error) {
	if err := del(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, res, err)
		return
	}
	respondData(w, http.StatusOK, res.label+" deleted successfully", nil)
}

// serveAnalytics answers from the analytics cache, computing on a miss.
func serveAnalytics[T any](s *Server, w http.ResponseWriter, r *http.Request, res resource, name string, compute func(context.Context) (T, error)) {
	ctx := r.Context()
	key := cache.Key(res.kind, name, r.URL.Query())
	data, err := cache.Memoize(s.analyticsCache, key, func() (T, error) {
		log.FromContext(ctx).WithComponent(log.ComponentAnalytics).DebugContext(ctx, "Analytics cache miss",
			log.FieldCacheKey, key)
		return compute(ctx)
	})
	if err != nil {
		s.writeError(w, r, res, err)
		return
	}
	respondData(w, http.StatusOK, "", data)
}

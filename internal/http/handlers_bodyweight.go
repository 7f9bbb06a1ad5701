package http

import (
	"context"
	"net/http"

	"mysphere/internal/analytics"
	"mysphere/internal/core"
	"mysphere/internal/storage"
)

func (s *Server) handleListBodyWeights(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	filter := storage.BodyWeightFilter{Unit: core.WeightUnit(q.text("unit"))}
	page := q.page()
	if err := q.err(); err != nil {
		s.writeError(w, r, bodyWeightResource, err)
		return
	}

	result, err := s.bodyWeights.List(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, bodyWeightResource, err)
		return
	}
	respondPage(w, result)
}

func (s *Server) handleRecentBodyWeights(w http.ResponseWriter, r *http.Request) {
	entries, err := s.bodyWeightStats.Recent(r.Context())
	if err != nil {
		s.writeError(w, r, bodyWeightResource, err)
		return
	}
	respondData(w, http.StatusOK, "", entries)
}

func (s *Server) handleCreateBodyWeight(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, bodyWeightResource, s.bodyWeights.Create)
}

func (s *Server) handleGetBodyWeight(w http.ResponseWriter, r *http.Request) {
	getRecord(s, w, r, bodyWeightResource, s.bodyWeights.Get)
}

func (s *Server) handleUpdateBodyWeight(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, bodyWeightResource, s.bodyWeights.Update)
}

func (s *Server) handleDeleteBodyWeight(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, bodyWeightResource, s.bodyWeights.Delete)
}

func (s *Server) handleBodyWeightSummary(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	req := q.period()
	if err := q.err(); err != nil {
		s.writeError(w, r, bodyWeightResource, err)
		return
	}
	serveAnalytics(s, w, r, bodyWeightResource, "summary", func(ctx context.Context) (analytics.BodyWeightSummary, error) {
		return s.bodyWeightStats.Summary(ctx, req)
	})
}

func (s *Server) handleBodyWeightTrends(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	req := q.trend()
	if err := q.err(); err != nil {
		s.writeError(w, r, bodyWeightResource, err)
		return
	}
	serveAnalytics(s, w, r, bodyWeightResource, "trends", func(ctx context.Context) (analytics.BodyWeightTrends, error) {
		return s.bodyWeightStats.Trends(ctx, req)
	})
}

func (s *Server) handleBodyWeightStats(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(s, w, r, bodyWeightResource, "stats", s.bodyWeightStats.Stats)
}

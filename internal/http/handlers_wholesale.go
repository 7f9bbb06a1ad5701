package http

import (
	"context"
	"net/http"

	"mysphere/internal/analytics"
	"mysphere/internal/storage"
)

func (s *Server) handleListWholesale(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	filter := storage.WholesaleFilter{
		MinInvestment: q.floatParam("minInvestment"),
		MaxInvestment: q.floatParam("maxInvestment"),
	}
	page := q.page()
	if err := q.err(); err != nil {
		s.writeError(w, r, wholesaleResource, err)
		return
	}

	result, err := s.wholesale.List(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, wholesaleResource, err)
		return
	}
	respondPage(w, result)
}

func (s *Server) handleRecentWholesale(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	limit := q.intParam("limit")
	if err := q.err(); err != nil {
		s.writeError(w, r, wholesaleResource, err)
		return
	}
	batches, err := s.wholesaleStats.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, wholesaleResource, err)
		return
	}
	respondData(w, http.StatusOK, "", batches)
}

func (s *Server) handleCreateWholesale(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, wholesaleResource, s.wholesale.Create)
}

func (s *Server) handleGetWholesale(w http.ResponseWriter, r *http.Request) {
	getRecord(s, w, r, wholesaleResource, s.wholesale.Get)
}

func (s *Server) handleUpdateWholesale(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, wholesaleResource, s.wholesale.Update)
}

func (s *Server) handleDeleteWholesale(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, wholesaleResource, s.wholesale.Delete)
}

func (s *Server) handleWholesaleSummary(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	req := q.period()
	if err := q.err(); err != nil {
		s.writeError(w, r, wholesaleResource, err)
		return
	}
	serveAnalytics(s, w, r, wholesaleResource, "summary", func(ctx context.Context) (analytics.WholesaleSummary, error) {
		return s.wholesaleStats.Summary(ctx, req)
	})
}

func (s *Server) handleWholesaleTrends(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	req := q.trend()
	if err := q.err(); err != nil {
		s.writeError(w, r, wholesaleResource, err)
		return
	}
	serveAnalytics(s, w, r, wholesaleResource, "trends", func(ctx context.Context) (analytics.WholesaleTrends, error) {
		return s.wholesaleStats.Trends(ctx, req)
	})
}

func (s *Server) handleWholesaleStats(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(s, w, r, wholesaleResource, "stats", s.wholesaleStats.Stats)
}

func (s *Server) handleWholesaleTips(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(s, w, r, wholesaleResource, "tips", s.wholesaleStats.Tips)
}

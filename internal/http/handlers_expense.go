package http

import (
	"context"
	"net/http"

	"mysphere/internal/analytics"
	"mysphere/internal/core"
	"mysphere/internal/storage"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	filter := storage.ExpenseFilter{
		Category:    core.Category(q.text("category")),
		PaymentType: core.PaymentType(q.text("paymentType")),
		From:        q.dateParam("startDate", false),
		To:          q.dateParam("endDate", true),
		Search:      q.text("search"),
	}
	page := q.page()
	if err := q.err(); err != nil {
		s.writeError(w, r, expenseResource, err)
		return
	}

	result, err := s.expenses.List(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, expenseResource, err)
		return
	}
	respondPage(w, result)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, expenseResource, s.expenses.Create)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	getRecord(s, w, r, expenseResource, s.expenses.Get)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, expenseResource, s.expenses.Update)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, expenseResource, s.expenses.Delete)
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	req := q.period()
	if err := q.err(); err != nil {
		s.writeError(w, r, expenseResource, err)
		return
	}
	serveAnalytics(s, w, r, expenseResource, "summary", func(ctx context.Context) (analytics.ExpenseSummary, error) {
		return s.expenseStats.Summary(ctx, req)
	})
}

func (s *Server) handleExpenseTrends(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	req := q.trend()
	if err := q.err(); err != nil {
		s.writeError(w, r, expenseResource, err)
		return
	}
	serveAnalytics(s, w, r, expenseResource, "trends", func(ctx context.Context) (analytics.ExpenseTrends, error) {
		return s.expenseStats.Trends(ctx, req)
	})
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r, s.loc)
	req := q.period()
	limit := q.intParam("limit")
	if err := q.err(); err != nil {
		s.writeError(w, r, expenseResource, err)
		return
	}
	serveAnalytics(s, w, r, expenseResource, "top-categories", func(ctx context.Context) (analytics.TopCategories, error) {
		return s.expenseStats.TopCategories(ctx, req, limit)
	})
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(s, w, r, expenseResource, "stats", s.expenseStats.Stats)
}

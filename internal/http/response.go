package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mysphere/internal/core"
	"mysphere/internal/log"
	"mysphere/internal/storage"
)

// envelope is the body of every API response.
type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Errors     []core.FieldError `json:"errors,omitempty"`
	Error      string            `json:"error,omitempty"`
	Pagination *pagination       `json:"pagination,omitempty"`
}

type pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

func paginationOf[R any](p storage.Page[R]) *pagination {
	return &pagination{
		CurrentPage:  p.Page,
		TotalPages:   p.TotalPages(),
		TotalItems:   p.Total,
		ItemsPerPage: p.Limit,
		HasNextPage:  p.HasNext(),
		HasPrevPage:  p.HasPrev(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondPage[R any](w http.ResponseWriter, page storage.Page[R]) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: page.Items, Pagination: paginationOf(page)})
}

func respondFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// resource names a record kind in client facing messages.
type resource struct {
	kind  core.Kind
	label string // capitalized singular, e.g. "Expense"
	lower string // as used mid-sentence
}

var (
	expenseResource    = resource{kind: core.KindExpense, label: "Expense", lower: "expense"}
	bodyWeightResource = resource{kind: core.KindBodyWeight, label: "Body weight entry", lower: "body weight entry"}
	wholesaleResource  = resource{kind: core.KindWholesale, label: "Wholesale batch", lower: "wholesale batch"}
)

// writeError is the single place where errors become HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, res resource, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Validation error", Errors: verr.Errors})
		return
	case errors.Is(err, core.ErrMalformedID):
		respondFail(w, http.StatusBadRequest, "Invalid "+res.lower+" ID")
		return
	case errors.Is(err, core.ErrNotFound):
		respondFail(w, http.StatusNotFound, res.label+" not found")
		return
	case errors.Is(err, context.DeadlineExceeded):
		ctx := r.Context()
		log.FromContext(ctx).WithComponent(log.ComponentHTTP).WarnContext(ctx, "Request timed out",
			log.FieldErrorType, log.ErrorTypeTimeout,
			log.FieldPath, r.URL.Path)
		respondFail(w, http.StatusGatewayTimeout, "Request timed out")
		return
	}

	ctx := r.Context()
	log.FromContext(ctx).WithComponent(log.ComponentHTTP).ErrorContext(ctx, "Request failed",
		log.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			WithRecord(string(res.kind), "").
			WithErrorType(log.ErrorTypeInternal).
			WithError(err).
			ToSlice()...)

	body := envelope{Message: "Something went wrong!"}
	if s.cfg.IsDevelopment() {
		body.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

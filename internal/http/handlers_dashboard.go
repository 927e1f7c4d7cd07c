package http

import (
	"net/http"

	"finboard/internal/engine"
	"finboard/internal/log"
)

// maxTrendWindowDays bounds the trend query so a client cannot request an
// unbounded bucket allocation.
const maxTrendWindowDays = 365

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	m, err := s.dashboard.Stats(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Stats failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.dashboard.Monthly(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly series failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute monthly series")
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	sums, err := s.dashboard.Categories(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category breakdown failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute categories")
		return
	}
	writeJSON(w, http.StatusOK, sums)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	days := parsePositiveInt(r, "days", engine.DefaultTrendWindowDays)
	if days > maxTrendWindowDays {
		days = maxTrendWindowDays
	}

	trend, err := s.dashboard.Trend(r.Context(), days)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Daily trend failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute trend")
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleIncomeSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.dashboard.IncomeSources(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Income sources failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute income sources")
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r, "limit", engine.DefaultTopExpensesLimit)

	top, err := s.dashboard.TopExpenses(r.Context(), limit)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Top expenses failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute top expenses")
		return
	}

	views := make([]transactionView, 0, len(top))
	for _, t := range top {
		views = append(views, newTransactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.dashboard.Patterns(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Spending patterns failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute patterns")
		return
	}
	writeJSON(w, http.StatusOK, patterns)
}

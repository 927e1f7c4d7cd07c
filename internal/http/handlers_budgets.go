package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/budget"
	"finboard/internal/core"
	"finboard/internal/log"
)

type upsertBudgetRequest struct {
	Category  string `json:"category"`
	Allocated string `json:"allocated"`
	// ExistingCategory identifies the entry being edited. Empty means
	// create; creating over an existing category is a conflict.
	ExistingCategory string `json:"existing_category"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListBudgets(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List budgets failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}

	views, err := s.dashboard.BudgetsWithSpent(r.Context(), entries)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Budget evaluation failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to evaluate budgets")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req upsertBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Allocated)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid allocated amount")
		return
	}

	entries, err := s.store.ListBudgets(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List budgets failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load budgets")
		return
	}

	payload := core.BudgetEntry{
		Category:  sanitizeInput(req.Category),
		Allocated: core.Money{Cents: cents},
	}
	updated, err := budget.Upsert(entries, req.ExistingCategory, payload)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateCategory):
			writeError(w, http.StatusConflict, "budget category already exists")
		case errors.Is(err, core.ErrNotFound):
			writeError(w, http.StatusNotFound, "budget category not found")
		default:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	if err := s.store.ReplaceBudgets(r.Context(), updated); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Save budgets failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save budgets")
		return
	}

	views, err := s.dashboard.BudgetsWithSpent(r.Context(), updated)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Budget evaluation failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to evaluate budgets")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	if err := s.store.DeleteBudget(r.Context(), category); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget category not found")
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Delete budget failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
)

type transactionView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`
}

func newTransactionView(t core.Transaction) transactionView {
	date := t.Date.Format("2006-01-02")
	if t.Date.HasClock() {
		date = t.Date.Format(time.RFC3339)
	}
	return transactionView{
		ID:          t.ID,
		Description: t.Description,
		Category:    t.Category,
		Date:        date,
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
	}
}

type createTransactionRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List transactions failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, newTransactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD or RFC3339")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	tx := core.Transaction{
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(req.Type),
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Create transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, newTransactionView(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Delete transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrEmptyCategory)
}

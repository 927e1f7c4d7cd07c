package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"finboard/internal/bills"
	"finboard/internal/core"
	"finboard/internal/log"
)

type billView struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date"`
	Paid        bool   `json:"paid"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status"`
}

type createBillRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	DueDate     string `json:"due_date"`
	Category    string `json:"category"`
}

func newBillView(b core.Bill, today time.Time) billView {
	return billView{
		ID:          b.ID,
		Description: b.Description,
		AmountCents: b.Amount.Cents,
		DueDate:     b.DueDate.Format("2006-01-02"),
		Paid:        b.Paid,
		Category:    b.Category,
		Status:      string(bills.DueStatus(b, today)),
	}
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListBills(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List bills failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}

	if r.URL.Query().Get("unpaid") == "true" {
		list = bills.Unpaid(list)
	}

	today := time.Now()
	views := make([]billView, 0, len(list))
	for _, b := range bills.SortByDueDate(list) {
		views = append(views, newBillView(b, today))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid due date, expected YYYY-MM-DD")
		return
	}

	b := core.Bill{
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		DueDate:     due,
		Category:    sanitizeInput(req.Category),
	}
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.CreateBill(r.Context(), b)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Create bill failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save bill")
		return
	}
	b.ID = id

	writeJSON(w, http.StatusCreated, newBillView(b, time.Now()))
}

func (s *Server) handleToggleBill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	paid, err := s.store.ToggleBillPaid(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Toggle bill failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to toggle bill")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "paid": paid})
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	if err := s.store.DeleteBill(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Delete bill failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete bill")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"finboard/internal/core"
	"finboard/internal/goal"
	"finboard/internal/log"
)

type goalView struct {
	Name         string `json:"name"`
	Category     string `json:"category,omitempty"`
	TargetCents  int64  `json:"target_cents"`
	CurrentCents int64  `json:"current_cents"`
	TargetDate   string `json:"target_date,omitempty"`
}

type goalResponse struct {
	Goal    *goalView     `json:"goal"`
	Metrics *goal.Metrics `json:"metrics,omitempty"`
}

type putGoalRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Target     string `json:"target"`
	Current    string `json:"current"`
	TargetDate string `json:"target_date"`
}

// handleGetGoal returns the current goal with derived metrics. No goal set
// is a normal state, served as 200 with a null goal.
func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.goals.GetGoal(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Get goal failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load goal")
		return
	}
	if g == nil {
		writeJSON(w, http.StatusOK, goalResponse{Goal: nil})
		return
	}

	view := goalView{
		Name:         g.Name,
		Category:     g.Category,
		TargetCents:  g.Target.Cents,
		CurrentCents: g.Current.Cents,
	}
	if g.TargetDate != nil {
		view.TargetDate = g.TargetDate.Format("2006-01-02")
	}
	metrics := goal.Compute(*g, time.Now())
	writeJSON(w, http.StatusOK, goalResponse{Goal: &view, Metrics: &metrics})
}

func (s *Server) handlePutGoal(w http.ResponseWriter, r *http.Request) {
	var req putGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := core.ParseDecimalToCents(req.Target)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}
	current := int64(0)
	if req.Current != "" {
		current, err = core.ParseDecimalToCents(req.Current)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid current amount")
			return
		}
	}

	g := core.SavingsGoal{
		Name:     sanitizeInput(req.Name),
		Category: sanitizeInput(req.Category),
		Target:   core.Money{Cents: target},
		Current:  core.Money{Cents: current},
	}
	if req.TargetDate != "" {
		d, err := parseDate(req.TargetDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid target date, expected YYYY-MM-DD")
			return
		}
		g.TargetDate = &d
	}
	if err := g.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.goals.SetGoal(r.Context(), g); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Set goal failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save goal")
		return
	}

	s.handleGetGoal(w, r)
}

// handleDeleteGoal clears the goal. Deleting an absent goal still succeeds.
func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.ClearGoal(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Clear goal failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to clear goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

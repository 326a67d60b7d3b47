package http

import (
	"net/http"

	"fintrack/internal/core"
)

type budgetRequest struct {
	CategoryID int64      `json:"category_id"`
	Month      string     `json:"month"`
	Amount     core.Money `json:"amount"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	budgets, err := s.repo.ListBudgets(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	month, err := core.ParseMonth(req.Month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := req.Amount.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	budget, err := s.repo.CreateBudget(r.Context(), user.ID, req.CategoryID, month, req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

func (s *Server) handleBudgetsForMonth(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	budgets, err := s.repo.ListBudgetsForMonth(r.Context(), user.ID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	month, err := core.ParseMonth(req.Month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := req.Amount.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	budget, err := s.repo.UpdateBudget(r.Context(), user.ID, id, req.CategoryID, month, req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := s.repo.DeleteBudget(r.Context(), user.ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type expenseRequest struct {
	CategoryID *int64     `json:"category_id"`
	Amount     core.Money `json:"amount"`
	Note       string     `json:"note"`
	Date       core.Date  `json:"date"`
}

type expenseCreateResponse struct {
	Expense      core.Expense       `json:"expense"`
	BudgetStatus *core.BudgetStatus `json:"budget_status,omitempty"`
}

type expenseListResponse struct {
	Items   []core.Expense `json:"items"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	filter, err := expenseFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := s.repo.ListExpenses(r.Context(), user.ID, filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	writeJSON(w, http.StatusOK, expenseListResponse{
		Items: items, Total: total, Page: page, PerPage: perPage,
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, status, err := s.expenses.CreateExpense(r.Context(), user.ID, req.CategoryID, req.Amount, strings.TrimSpace(req.Note), req.Date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseCreateResponse{Expense: expense, BudgetStatus: status})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, status, err := s.expenses.UpdateExpense(r.Context(), user.ID, id, req.CategoryID, req.Amount, strings.TrimSpace(req.Note), req.Date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseCreateResponse{Expense: expense, BudgetStatus: status})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := s.repo.DeleteExpense(r.Context(), user.ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}

func expenseFilterFromQuery(r *http.Request) (storage.ExpenseFilter, error) {
	var filter storage.ExpenseFilter
	q := r.URL.Query()

	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errors.New("invalid category_id")
		}
		filter.CategoryID = &id
	}
	if v := q.Get("start_date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &d
	}
	if v := q.Get("end_date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &d
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Page = n
		}
	}
	if v := q.Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.PerPage = n
		}
	}
	return filter, nil
}

// Package services orchestrates ledger writes with budget evaluation
// and alert publishing.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ExpenseService coordinates expense writes, budget evaluation and
// alert publishing. The AMQP client may be nil when no broker is
// configured; alerts are then skipped.
type ExpenseService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.Repository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense validates and saves an expense, then evaluates the
// category budget for the expense's month. The evaluation runs after
// the insert commits, so the new row is part of the total. A nil
// status means no budget applied; below the warning threshold the
// status is returned with empty Status and Alert fields.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int64, categoryID *int64, amount core.Money, note string, date core.Date) (core.Expense, *core.BudgetStatus, error) {
	e := core.Expense{CategoryID: categoryID, Amount: amount, Note: note, Date: date}
	if err := e.Validate(); err != nil {
		return core.Expense{}, nil, err
	}

	created, err := s.storage.CreateExpense(ctx, userID, categoryID, amount, note, date)
	if err != nil {
		return core.Expense{}, nil, fmt.Errorf("save expense: %w", err)
	}

	status := s.evaluateAndAlert(ctx, created)
	return created, status, nil
}

// UpdateExpense rewrites an expense and re-evaluates the budget of its
// (possibly new) category and month.
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID, id int64, categoryID *int64, amount core.Money, note string, date core.Date) (core.Expense, *core.BudgetStatus, error) {
	e := core.Expense{CategoryID: categoryID, Amount: amount, Note: note, Date: date}
	if err := e.Validate(); err != nil {
		return core.Expense{}, nil, err
	}

	updated, err := s.storage.UpdateExpense(ctx, userID, id, categoryID, amount, note, date)
	if err != nil {
		return core.Expense{}, nil, err
	}

	status := s.evaluateAndAlert(ctx, updated)
	return updated, status, nil
}

// Evaluate classifies spending against the budget of one category and
// month. Absence of a budget is not an error; it returns a nil status.
func (s *ExpenseService) Evaluate(ctx context.Context, userID, categoryID int64, month core.MonthKey) (*core.BudgetStatus, error) {
	budget, err := s.storage.BudgetFor(ctx, userID, categoryID, month)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}

	total, err := s.storage.SumCategoryMonth(ctx, userID, categoryID, month)
	if err != nil {
		return nil, fmt.Errorf("sum spending: %w", err)
	}

	status := core.EvaluateBudget(month, budget.Amount, total)
	return &status, nil
}

// evaluateAndAlert runs the budget check for an expense that was just
// written. The status is returned whenever a budget covers the
// expense, even below the warning threshold; an alert is published
// only when a threshold is crossed. Publish failures are logged and
// swallowed; the write already succeeded.
func (s *ExpenseService) evaluateAndAlert(ctx context.Context, e core.Expense) *core.BudgetStatus {
	if e.CategoryID == nil {
		return nil
	}

	status, err := s.Evaluate(ctx, e.UserID, *e.CategoryID, e.Date.Month())
	if err != nil {
		slog.ErrorContext(ctx, "Budget evaluation failed",
			"user_id", e.UserID, "expense_id", e.ID, "error", err)
		return nil
	}
	if status == nil {
		return nil
	}

	if status.Status != "" {
		if err := s.publishAlert(ctx, e, *status); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"user_id", e.UserID, "expense_id", e.ID, "error", err)
			// Don't fail the request, the expense is saved.
		}
	}
	return status
}

func (s *ExpenseService) publishAlert(ctx context.Context, e core.Expense, status core.BudgetStatus) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping budget alert")
		return nil
	}
	msg := amqp.NewBudgetAlertMessage(e.UserID, e.ID, *e.CategoryID, status)
	return s.amqpClient.PublishBudgetAlert(ctx, msg)
}

// Close releases storage and broker connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}

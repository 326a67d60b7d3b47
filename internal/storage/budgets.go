package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// CreateBudget inserts a monthly budget for a category the user owns.
// The category is checked inside the same transaction so a budget can
// never reference a foreign or vanished category. A second budget for
// the same category and month surfaces as core.ErrBudgetExists.
func (r *Repository) CreateBudget(ctx context.Context, userID, categoryID int64, month core.MonthKey, amount core.Money) (core.Budget, error) {
	ts := now()
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM categories WHERE id = ? AND user_id = ?`,
			categoryID, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if exists == 0 {
			return core.ErrNotFound
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, category_id, month, amount_cents, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			userID, categoryID, month.String(), amount.Cents, ts, ts)
		if err != nil {
			if isUniqueViolation(err, "budgets") {
				return core.ErrBudgetExists
			}
			return fmt.Errorf("create budget: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create budget id: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget created",
		"id", id, "user_id", userID, "category_id", categoryID, "month", month.String(), "amount", amount.String())

	return core.Budget{
		ID: id, UserID: userID, CategoryID: categoryID,
		Month: month, Amount: amount, CreatedAt: ts, UpdatedAt: ts,
	}, nil
}

// ListBudgets returns all budgets of the user, newest month first.
func (r *Repository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, month, amount_cents, created_at, updated_at
		 FROM budgets WHERE user_id = ? ORDER BY month DESC, category_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()
	return scanBudgets(rows)
}

// ListBudgetsForMonth returns the user's budgets for one month,
// core.ErrNotFound when there are none.
func (r *Repository) ListBudgetsForMonth(ctx context.Context, userID int64, month core.MonthKey) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, month, amount_cents, created_at, updated_at
		 FROM budgets WHERE user_id = ? AND month = ? ORDER BY category_id`,
		userID, month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets for month: %w", err)
	}
	defer rows.Close()

	budgets, err := scanBudgets(rows)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, core.ErrNotFound
	}
	return budgets, nil
}

// BudgetFor looks up the budget row for one category and month.
func (r *Repository) BudgetFor(ctx context.Context, userID, categoryID int64, month core.MonthKey) (core.Budget, error) {
	var (
		b     core.Budget
		cents int64
		m     string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, month, amount_cents, created_at, updated_at
		 FROM budgets WHERE user_id = ? AND category_id = ? AND month = ?`,
		userID, categoryID, month.String()).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &m, &cents, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.Month = core.MonthKey(m)
	b.Amount = core.Money{Cents: cents}
	return b, nil
}

// UpdateBudget rewrites an existing budget's category, month and
// amount. The target category must belong to the user, and moving the
// budget onto another budget's (category, month) surfaces as
// core.ErrBudgetExists.
func (r *Repository) UpdateBudget(ctx context.Context, userID, id, categoryID int64, month core.MonthKey, amount core.Money) (core.Budget, error) {
	ts := now()
	var b core.Budget
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM categories WHERE id = ? AND user_id = ?`,
			categoryID, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if exists == 0 {
			return core.ErrNotFound
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE budgets SET category_id = ?, month = ?, amount_cents = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			categoryID, month.String(), amount.Cents, ts, id, userID)
		if err != nil {
			if isUniqueViolation(err, "budgets") {
				return core.ErrBudgetExists
			}
			return fmt.Errorf("update budget: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update budget: %w", err)
		}
		if n == 0 {
			return core.ErrNotFound
		}

		var (
			cents int64
			m     string
		)
		err = tx.QueryRowContext(ctx,
			`SELECT id, user_id, category_id, month, amount_cents, created_at, updated_at
			 FROM budgets WHERE id = ? AND user_id = ?`, id, userID).
			Scan(&b.ID, &b.UserID, &b.CategoryID, &m, &cents, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("reload budget: %w", err)
		}
		b.Month = core.MonthKey(m)
		b.Amount = core.Money{Cents: cents}
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget updated",
		"id", id, "user_id", userID, "category_id", categoryID, "month", month.String(), "amount", amount.String())
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Budget deleted", "id", id, "user_id", userID)
	return nil
}

func scanBudgets(rows *sql.Rows) ([]core.Budget, error) {
	budgets := []core.Budget{}
	for rows.Next() {
		var (
			b     core.Budget
			cents int64
			m     string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &m, &cents, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Month = core.MonthKey(m)
		b.Amount = core.Money{Cents: cents}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan budgets: %w", err)
	}
	return budgets, nil
}

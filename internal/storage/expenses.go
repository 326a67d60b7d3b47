package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ExpenseFilter narrows and pages an expense listing. Nil pointer
// fields mean "no constraint".
type ExpenseFilter struct {
	CategoryID *int64
	StartDate  *core.Date
	EndDate    *core.Date
	Page       int
	PerPage    int
}

func (f ExpenseFilter) normalize() ExpenseFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	return f
}

// CreateExpense inserts an expense. When categoryID is set the category
// must belong to the user; the check runs in the same transaction as
// the insert.
func (r *Repository) CreateExpense(ctx context.Context, userID int64, categoryID *int64, amount core.Money, note string, date core.Date) (core.Expense, error) {
	ts := now()
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if categoryID != nil {
			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(1) FROM categories WHERE id = ? AND user_id = ?`,
				*categoryID, userID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("check category: %w", err)
			}
			if exists == 0 {
				return core.ErrNotFound
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (user_id, category_id, amount_cents, note, date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, categoryID, amount.Cents, note, date.String(), ts, ts)
		if err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create expense id: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense created",
		"id", id, "user_id", userID, "amount", amount.String(), "date", date.String())

	return core.Expense{
		ID: id, UserID: userID, CategoryID: categoryID,
		Amount: amount, Note: note, Date: date,
		CreatedAt: ts, UpdatedAt: ts,
	}, nil
}

// ListExpenses returns one page of the user's expenses, newest date
// first, together with the total row count matching the filter.
func (r *Repository) ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]core.Expense, int, error) {
	filter = filter.normalize()

	where := []string{"user_id = ?"}
	args := []any{userID}
	if filter.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate.String())
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate.String())
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM expenses WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	pageArgs := append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, note, date, created_at, updated_at
		 FROM expenses WHERE `+cond+`
		 ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, total, nil
}

func (r *Repository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, note, date, created_at, updated_at
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// UpdateExpense rewrites every mutable field of an expense. The
// category ownership check mirrors CreateExpense.
func (r *Repository) UpdateExpense(ctx context.Context, userID, id int64, categoryID *int64, amount core.Money, note string, date core.Date) (core.Expense, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if categoryID != nil {
			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(1) FROM categories WHERE id = ? AND user_id = ?`,
				*categoryID, userID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("check category: %w", err)
			}
			if exists == 0 {
				return core.ErrNotFound
			}
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET category_id = ?, amount_cents = ?, note = ?, date = ?, updated_at = ?
			 WHERE id = ? AND user_id = ?`,
			categoryID, amount.Cents, note, date.String(), now(), id, userID)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	return r.GetExpense(ctx, userID, id)
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "user_id", userID)
	return nil
}

// SumCategoryMonth totals the user's expenses in one category for one
// month. Uncategorized expenses never count toward a budget.
func (r *Repository) SumCategoryMonth(ctx context.Context, userID, categoryID int64, month core.MonthKey) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND category_id = ? AND substr(date, 1, 7) = ?`,
		userID, categoryID, month.String()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum category month: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e          core.Expense
		categoryID sql.NullInt64
		note       sql.NullString
		date       string
		cents      int64
	)
	err := row.Scan(&e.ID, &e.UserID, &categoryID, &cents, &note, &date, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	if categoryID.Valid {
		id := categoryID.Int64
		e.CategoryID = &id
	}
	e.Note = note.String
	e.Amount = core.Money{Cents: cents}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense date %q: %w", date, err)
	}
	e.Date = d
	return e, nil
}

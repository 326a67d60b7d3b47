package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const topCategoriesLimit = 5

// MonthlySummary aggregates one month of the user's expenses: total,
// transaction count, average amount and the top spending categories.
// Ties in the ranking break toward the older category id so the order
// is stable between requests.
func (r *Repository) MonthlySummary(ctx context.Context, userID int64, month core.MonthKey) (core.MonthlySummary, error) {
	var (
		totalCents int64
		count      int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(1) FROM expenses
		 WHERE user_id = ? AND substr(date, 1, 7) = ?`,
		userID, month.String()).Scan(&totalCents, &count)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("summary totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, SUM(e.amount_cents) AS total
		 FROM expenses e
		 JOIN categories c ON c.id = e.category_id AND c.user_id = e.user_id
		 WHERE e.user_id = ? AND substr(e.date, 1, 7) = ?
		 GROUP BY c.id, c.name
		 ORDER BY total DESC, c.id ASC
		 LIMIT ?`,
		userID, month.String(), topCategoriesLimit)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("summary top categories: %w", err)
	}
	defer rows.Close()

	top := []core.TopCategory{}
	for rows.Next() {
		var (
			name  string
			cents int64
		)
		if err := rows.Scan(&name, &cents); err != nil {
			return core.MonthlySummary{}, fmt.Errorf("scan top category: %w", err)
		}
		top = append(top, core.TopCategory{Category: name, TotalSpent: core.Money{Cents: cents}})
	}
	if err := rows.Err(); err != nil {
		return core.MonthlySummary{}, fmt.Errorf("summary top categories: %w", err)
	}

	total := core.Money{Cents: totalCents}
	return core.MonthlySummary{
		Month:                 month,
		TotalExpenses:         total,
		TotalTransactions:     count,
		AverageTransaction:    core.AverageCents(total, count),
		TopSpendingCategories: top,
	}, nil
}

// MonthlyBreakdown splits one month of spending across every category
// the user owns. Categories without expenses in the month appear with
// zero totals; expenses whose category was deleted are counted in the
// monthly total but have no category row to land in.
func (r *Repository) MonthlyBreakdown(ctx context.Context, userID int64, month core.MonthKey) (core.MonthlyBreakdown, error) {
	var totalCents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND substr(date, 1, 7) = ?`,
		userID, month.String()).Scan(&totalCents)
	if err != nil {
		return core.MonthlyBreakdown{}, fmt.Errorf("breakdown total: %w", err)
	}
	total := core.Money{Cents: totalCents}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, COALESCE(SUM(e.amount_cents), 0), COUNT(e.id)
		 FROM categories c
		 LEFT JOIN expenses e
		   ON e.category_id = c.id AND e.user_id = c.user_id AND substr(e.date, 1, 7) = ?
		 WHERE c.user_id = ?
		 GROUP BY c.id, c.name`,
		month.String(), userID)
	if err != nil {
		return core.MonthlyBreakdown{}, fmt.Errorf("breakdown by category: %w", err)
	}
	defer rows.Close()

	breakdown := map[int64]core.CategoryBreakdown{}
	for rows.Next() {
		var (
			id    int64
			name  string
			cents int64
			count int
		)
		if err := rows.Scan(&id, &name, &cents, &count); err != nil {
			return core.MonthlyBreakdown{}, fmt.Errorf("scan breakdown row: %w", err)
		}
		amount := core.Money{Cents: cents}
		breakdown[id] = core.CategoryBreakdown{
			CategoryName:      name,
			TotalAmount:       amount,
			TransactionCount:  count,
			PercentageOfTotal: core.PercentOfTotal(amount, total),
		}
	}
	if err := rows.Err(); err != nil {
		return core.MonthlyBreakdown{}, fmt.Errorf("breakdown by category: %w", err)
	}

	return core.MonthlyBreakdown{
		Month:                month,
		TotalMonthlyExpenses: total,
		Breakdown:            breakdown,
	}, nil
}

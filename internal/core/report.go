package core

// TopCategory is one entry of the top-spending ranking in a monthly summary.
type TopCategory struct {
	Category   string `json:"category"`
	TotalSpent Money  `json:"total_spent"`
}

// MonthlySummary aggregates a user's expenses for one month.
type MonthlySummary struct {
	Month                 MonthKey      `json:"month"`
	TotalExpenses         Money         `json:"total_expenses"`
	TotalTransactions     int           `json:"total_transactions"`
	AverageTransaction    Money         `json:"average_transaction_amount"`
	TopSpendingCategories []TopCategory `json:"top_spending_categories"`
}

// CategoryBreakdown is the per-category slice of a monthly breakdown.
// Categories without expenses in the month appear with zero totals.
type CategoryBreakdown struct {
	CategoryName      string  `json:"category_name"`
	TotalAmount       Money   `json:"total_amount"`
	TransactionCount  int     `json:"transaction_count"`
	PercentageOfTotal float64 `json:"percentage_of_total_expenses"`
}

// MonthlyBreakdown maps every category the user owns to its share of the
// month, keyed by category id.
type MonthlyBreakdown struct {
	Month                MonthKey                    `json:"month"`
	TotalMonthlyExpenses Money                       `json:"total_monthly_expenses"`
	Breakdown            map[int64]CategoryBreakdown `json:"breakdown_by_category"`
}

// AverageCents divides a total by a transaction count, rounding half-up
// to the nearest cent. A zero count yields zero.
func AverageCents(total Money, count int) Money {
	if count <= 0 {
		return Money{}
	}
	n := int64(count)
	return Money{Cents: (total.Cents + n/2) / n}
}

// PercentOfTotal computes a category's share of the monthly total as a
// percentage rounded to two decimal places. A zero total yields zero so
// empty months never divide by zero.
func PercentOfTotal(part, total Money) float64 {
	if total.Cents <= 0 {
		return 0
	}
	return round2(float64(part.Cents) / float64(total.Cents) * 100)
}

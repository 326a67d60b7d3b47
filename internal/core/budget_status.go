package core

import "fmt"

// BudgetState classifies month-to-date spend against a budget.
type BudgetState string

const (
	// BudgetOver means total spend strictly exceeds the budget amount.
	BudgetOver BudgetState = "over"
	// BudgetNear means spend has reached at least 80% of the budget.
	BudgetNear BudgetState = "near"
)

// BudgetStatus is the result of evaluating an expense against the budget
// of its (user, category, month). Status and Alert are empty while spend
// stays below the warning threshold.
type BudgetStatus struct {
	Month        MonthKey    `json:"month"`
	BudgetAmount Money       `json:"budget_amount"`
	TotalSpent   Money       `json:"total_spent"`
	PercentSpent float64     `json:"percentage_spent"`
	Status       BudgetState `json:"status,omitempty"`
	Alert        string      `json:"alert,omitempty"`
}

// EvaluateBudget classifies month-to-date spend against a budget amount.
// Thresholds are checked high to low, first match wins:
//
//	total > budget      -> "over", alert reports the overage
//	total >= 80% budget -> "near", generic 80% warning
//	otherwise           -> no status, no alert
//
// The comparisons are exact integer arithmetic on cents, so a total equal
// to the budget is not "over" and exactly 80% is "near". The budget amount
// is guaranteed positive by validation.
func EvaluateBudget(month MonthKey, budget, total Money) BudgetStatus {
	status := BudgetStatus{
		Month:        month,
		BudgetAmount: budget,
		TotalSpent:   total,
		PercentSpent: round2(float64(total.Cents) / float64(budget.Cents) * 100),
	}

	switch {
	case total.Cents > budget.Cents:
		over := Money{Cents: total.Cents - budget.Cents}
		status.Status = BudgetOver
		status.Alert = fmt.Sprintf("Budget exceeded: you are %s over your %s budget for this category", over, budget)
	case total.Cents*5 >= budget.Cents*4: // total/budget >= 80%, exact in cents
		status.Status = BudgetNear
		status.Alert = "Warning: you have spent at least 80% of your budget for this category"
	}

	return status
}

// round2 rounds a display percentage to two decimal places.
func round2(f float64) float64 {
	if f < 0 {
		return float64(int64(f*100-0.5)) / 100
	}
	return float64(int64(f*100+0.5)) / 100
}

package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// BudgetAlertMessage carries one budget evaluation result to the alert
// worker. It holds the full evaluation so the worker can notify without
// re-reading the ledger.
type BudgetAlertMessage struct {
	UserID       int64            `json:"user_id"`
	ExpenseID    int64            `json:"expense_id"`
	CategoryID   int64            `json:"category_id"`
	Month        core.MonthKey    `json:"month"`
	Status       core.BudgetState `json:"status"`
	PercentSpent float64          `json:"percent_spent"`
	Alert        string           `json:"alert"`
	Timestamp    time.Time        `json:"timestamp"`
}

// NewBudgetAlertMessage builds a message from a triggered evaluation.
func NewBudgetAlertMessage(userID, expenseID, categoryID int64, status core.BudgetStatus) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		UserID:       userID,
		ExpenseID:    expenseID,
		CategoryID:   categoryID,
		Month:        status.Month,
		Status:       status.Status,
		PercentSpent: status.PercentSpent,
		Alert:        status.Alert,
		Timestamp:    time.Now(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Package worker turns budget alert messages into user notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AlertNotifier handles consumed budget alerts. In development mode it
// logs the dispatched notification; a mail sender would plug in here.
type AlertNotifier struct {
	storage *storage.Repository
}

func NewAlertNotifier(storage *storage.Repository) *AlertNotifier {
	return &AlertNotifier{storage: storage}
}

// HandleAlert resolves the alerted user and dispatches the
// notification. An unknown user means the account was deleted after
// the alert was queued; the message is dropped without error.
func (n *AlertNotifier) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if msg.Alert == "" {
		slog.WarnContext(ctx, "Alert message without text, dropping",
			"user_id", msg.UserID, "expense_id", msg.ExpenseID)
		return nil
	}

	user, err := n.storage.GetUserByID(ctx, msg.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Alerted user no longer exists, dropping",
				"user_id", msg.UserID)
			return nil
		}
		return fmt.Errorf("load alerted user: %w", err)
	}

	n.dispatch(ctx, user, msg)
	return nil
}

// dispatch delivers the notification. Development mode logs it.
func (n *AlertNotifier) dispatch(ctx context.Context, user core.User, msg *amqp.BudgetAlertMessage) {
	slog.InfoContext(ctx, "Budget alert dispatched",
		"user_id", user.ID,
		"email", user.Email,
		"category_id", msg.CategoryID,
		"month", msg.Month.String(),
		"status", msg.Status,
		"percent_spent", msg.PercentSpent,
		"alert", msg.Alert)
}

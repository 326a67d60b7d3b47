package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newTestService(t *testing.T) (*ExpenseService, *storage.Repository) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "fintrack_test.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	// Nil AMQP client: alerts are skipped, requests still succeed.
	return NewExpenseService(repo, nil), repo
}

func seedUserCategory(t *testing.T, repo *storage.Repository) (core.User, core.Category) {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), "mario@example.com", "Mario", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	c, err := repo.CreateCategory(context.Background(), u.ID, "Dining")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	return u, c
}

func TestCreateExpenseNoBudget(t *testing.T) {
	svc, repo := newTestService(t)
	u, c := seedUserCategory(t, repo)

	d := core.NewDate(2025, 8, 10)
	exp, status, err := svc.CreateExpense(context.Background(), u.ID, &c.ID, core.Money{Cents: 1500}, "lunch", d)
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if exp.ID == 0 {
		t.Error("CreateExpense() returned zero id")
	}
	if status != nil {
		t.Errorf("status = %+v, want nil without a budget", status)
	}
}

func TestCreateExpenseUncategorized(t *testing.T) {
	svc, repo := newTestService(t)
	u, _ := seedUserCategory(t, repo)

	_, status, err := svc.CreateExpense(context.Background(), u.ID, nil, core.Money{Cents: 1500}, "", core.NewDate(2025, 8, 10))
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if status != nil {
		t.Errorf("status = %+v, want nil for uncategorized expense", status)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	svc, repo := newTestService(t)
	u, c := seedUserCategory(t, repo)

	tests := []struct {
		name    string
		amount  core.Money
		date    core.Date
		wantErr error
	}{
		{"zero amount", core.Money{}, core.NewDate(2025, 8, 10), core.ErrInvalidAmount},
		{"negative amount", core.Money{Cents: -100}, core.NewDate(2025, 8, 10), core.ErrInvalidAmount},
		{"zero date", core.Money{Cents: 100}, core.Date{}, core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateExpense(context.Background(), u.ID, &c.ID, tt.amount, "", tt.date)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// The worked scenario: $500 budget for 2025-08, $510 spent is over by
// $10; $410 is 82% and near.
func TestCreateExpenseBudgetThresholds(t *testing.T) {
	svc, repo := newTestService(t)
	u, c := seedUserCategory(t, repo)

	if _, err := repo.CreateBudget(context.Background(), u.ID, c.ID, "2025-08", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	d := core.NewDate(2025, 8, 10)

	_, status, err := svc.CreateExpense(context.Background(), u.ID, &c.ID, core.Money{Cents: 41000}, "", d)
	if err != nil {
		t.Fatalf("CreateExpense(410) error = %v", err)
	}
	if status == nil {
		t.Fatal("status = nil, want near")
	}
	if status.Status != core.BudgetNear {
		t.Errorf("status = %q, want %q", status.Status, core.BudgetNear)
	}
	if status.PercentSpent != 82 {
		t.Errorf("percent = %v, want 82", status.PercentSpent)
	}

	_, status, err = svc.CreateExpense(context.Background(), u.ID, &c.ID, core.Money{Cents: 10000}, "", d)
	if err != nil {
		t.Fatalf("CreateExpense(100) error = %v", err)
	}
	if status == nil || status.Status != core.BudgetOver {
		t.Fatalf("status = %+v, want over", status)
	}
	if status.TotalSpent.Cents != 51000 {
		t.Errorf("total = %d, want 51000 (insert included in sum)", status.TotalSpent.Cents)
	}
	if status.Alert == "" {
		t.Error("over status should carry an alert message")
	}
}

// A covered expense always reports the evaluation, even when spend is
// well below the warning threshold; only status and alert stay empty.
func TestCreateExpenseBelowThresholdReportsStatus(t *testing.T) {
	svc, repo := newTestService(t)
	u, c := seedUserCategory(t, repo)

	if _, err := repo.CreateBudget(context.Background(), u.ID, c.ID, "2025-08", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	_, status, err := svc.CreateExpense(context.Background(), u.ID, &c.ID, core.Money{Cents: 10000}, "", core.NewDate(2025, 8, 10))
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if status == nil {
		t.Fatal("status = nil, want evaluation against the existing budget")
	}
	if status.Status != "" || status.Alert != "" {
		t.Errorf("status/alert = %q/%q, want both empty at 20%%", status.Status, status.Alert)
	}
	if status.BudgetAmount.Cents != 50000 || status.TotalSpent.Cents != 10000 {
		t.Errorf("amounts = %d/%d, want 50000/10000", status.BudgetAmount.Cents, status.TotalSpent.Cents)
	}
	if status.PercentSpent != 20 {
		t.Errorf("percent = %v, want 20", status.PercentSpent)
	}
}

func TestCreateExpenseExactBudgetNotOver(t *testing.T) {
	svc, repo := newTestService(t)
	u, c := seedUserCategory(t, repo)

	if _, err := repo.CreateBudget(context.Background(), u.ID, c.ID, "2025-08", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	_, status, err := svc.CreateExpense(context.Background(), u.ID, &c.ID, core.Money{Cents: 50000}, "", core.NewDate(2025, 8, 10))
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if status == nil {
		t.Fatal("status = nil, want near")
	}
	// Spending the whole budget is 100%: near, not over.
	if status.Status != core.BudgetNear {
		t.Errorf("status = %q, want %q", status.Status, core.BudgetNear)
	}
}

func TestUpdateExpenseReevaluates(t *testing.T) {
	svc, repo := newTestService(t)
	u, c := seedUserCategory(t, repo)

	if _, err := repo.CreateBudget(context.Background(), u.ID, c.ID, "2025-08", core.Money{Cents: 10000}); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	d := core.NewDate(2025, 8, 10)
	exp, status, err := svc.CreateExpense(context.Background(), u.ID, &c.ID, core.Money{Cents: 1000}, "", d)
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if status == nil || status.Status != "" {
		t.Fatalf("status = %+v, want evaluation without alert at 10%%", status)
	}

	_, status, err = svc.UpdateExpense(context.Background(), u.ID, exp.ID, &c.ID, core.Money{Cents: 12000}, "", d)
	if err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}
	if status == nil || status.Status != core.BudgetOver {
		t.Fatalf("status after update = %+v, want over", status)
	}
}

func TestEvaluateMonotonicity(t *testing.T) {
	svc, repo := newTestService(t)
	u, c := seedUserCategory(t, repo)

	if _, err := repo.CreateBudget(context.Background(), u.ID, c.ID, "2025-08", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	rank := func(s *core.BudgetStatus) int {
		if s == nil || s.Status == "" {
			return 0
		}
		if s.Status == core.BudgetNear {
			return 1
		}
		return 2
	}

	prev := 0
	d := core.NewDate(2025, 8, 10)
	for i := 0; i < 12; i++ {
		if _, _, err := svc.CreateExpense(context.Background(), u.ID, &c.ID, core.Money{Cents: 5000}, "", d); err != nil {
			t.Fatalf("CreateExpense(step %d) error = %v", i, err)
		}
		status, err := svc.Evaluate(context.Background(), u.ID, c.ID, "2025-08")
		if err != nil {
			t.Fatalf("Evaluate(step %d) error = %v", i, err)
		}
		if r := rank(status); r < prev {
			t.Fatalf("severity regressed at step %d: %d -> %d", i, prev, r)
		} else {
			prev = r
		}
	}
	if prev != 2 {
		t.Errorf("final severity = %d, want over", prev)
	}
}

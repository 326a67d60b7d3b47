package core

import (
	"strings"
	"testing"
)

func TestEvaluateBudgetThresholds(t *testing.T) {
	month := MonthKey("2025-08")
	budget := Money{Cents: 50000} // 500.00

	cases := []struct {
		name  string
		total int64
		want  BudgetState
	}{
		{"well under", 10000, ""},
		{"just under 80%", 39999, ""},
		{"exactly 80%", 40000, BudgetNear},
		{"above 80%", 41000, BudgetNear},
		{"exactly budget", 50000, BudgetNear}, // strict > required for "over"
		{"one cent over", 50001, BudgetOver},
		{"well over", 51000, BudgetOver},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateBudget(month, budget, Money{Cents: tc.total})
			if got.Status != tc.want {
				t.Fatalf("total %d: status = %q, want %q", tc.total, got.Status, tc.want)
			}
			if tc.want == "" && got.Alert != "" {
				t.Fatalf("total %d: unexpected alert %q", tc.total, got.Alert)
			}
			if tc.want != "" && got.Alert == "" {
				t.Fatalf("total %d: expected an alert", tc.total)
			}
		})
	}
}

func TestEvaluateBudgetOverageMessage(t *testing.T) {
	// $510 spent against a $500 budget: alert reports a $10.00 overage.
	got := EvaluateBudget("2025-08", Money{Cents: 50000}, Money{Cents: 51000})
	if got.Status != BudgetOver {
		t.Fatalf("status = %q, want over", got.Status)
	}
	if !strings.Contains(got.Alert, "10.00") {
		t.Errorf("alert should mention the 10.00 overage, got %q", got.Alert)
	}
	if got.PercentSpent != 102 {
		t.Errorf("percentage = %v, want 102", got.PercentSpent)
	}
}

func TestEvaluateBudgetNearExample(t *testing.T) {
	// $410 of $500 is 82%: "near", generic 80% warning.
	got := EvaluateBudget("2025-08", Money{Cents: 50000}, Money{Cents: 41000})
	if got.Status != BudgetNear {
		t.Fatalf("status = %q, want near", got.Status)
	}
	if !strings.Contains(got.Alert, "80%") {
		t.Errorf("alert should mention the 80%% threshold, got %q", got.Alert)
	}
	if got.PercentSpent != 82 {
		t.Errorf("percentage = %v, want 82", got.PercentSpent)
	}
}

func TestEvaluateBudgetMonotonic(t *testing.T) {
	// Increasing spend never moves the classification backwards.
	budget := Money{Cents: 10000}
	rank := func(s BudgetState) int {
		switch s {
		case BudgetNear:
			return 1
		case BudgetOver:
			return 2
		}
		return 0
	}
	prev := 0
	for cents := int64(1); cents <= 15000; cents += 7 {
		got := EvaluateBudget("2025-01", budget, Money{Cents: cents})
		r := rank(got.Status)
		if r < prev {
			t.Fatalf("classification regressed at %d cents: %q", cents, got.Status)
		}
		prev = r
	}
}

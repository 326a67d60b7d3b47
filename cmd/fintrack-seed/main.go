// Development seeder: drops the schema, re-runs migrations and loads
// two demo accounts with generated categories, budgets and expenses.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type demoUser struct {
	email    string
	name     string
	password string
}

var demoUsers = []demoUser{
	{"john.doe@example.com", "John Doe", "password123"},
	{"jane.doe@example.com", "Jane Doe", "password123"},
}

var categoryNames = []string{"Groceries", "Dining", "Transport", "Entertainment", "Utilities", "Health"}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Resetting database", "path", cfg.SQLiteDBPath)
	if err := storage.Reset(cfg.SQLiteDBPath); err != nil {
		logger.Error("Failed to reset database", "error", err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	gofakeit.Seed(0)
	ctx := context.Background()

	for _, du := range demoUsers {
		if err := seedUser(ctx, repo, du); err != nil {
			logger.Error("Failed to seed user", "email", du.email, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Seeding complete", "users", len(demoUsers))
	for _, du := range demoUsers {
		fmt.Printf("demo account: %s / %s\n", du.email, du.password)
	}
}

func seedUser(ctx context.Context, repo *storage.Repository, du demoUser) error {
	hash, err := auth.HashPassword(du.password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := repo.CreateUser(ctx, du.email, du.name, hash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	now := time.Now()
	thisMonth := core.MonthKey(now.Format("2006-01"))

	for _, name := range categoryNames {
		category, err := repo.CreateCategory(ctx, user.ID, name)
		if err != nil {
			return fmt.Errorf("create category %q: %w", name, err)
		}

		// A budget between 200.00 and 800.00 for the current month.
		budgetCents := int64(gofakeit.Number(20000, 80000))
		if _, err := repo.CreateBudget(ctx, user.ID, category.ID, thisMonth, core.Money{Cents: budgetCents}); err != nil {
			return fmt.Errorf("create budget for %q: %w", name, err)
		}

		// A handful of expenses spread over the last 60 days.
		for i := 0; i < gofakeit.Number(3, 8); i++ {
			day := now.AddDate(0, 0, -gofakeit.Number(0, 59))
			date := core.NewDate(day.Year(), int(day.Month()), day.Day())
			amount := core.Money{Cents: int64(gofakeit.Number(100, 15000))}
			note := gofakeit.Sentence(4)

			if _, err := repo.CreateExpense(ctx, user.ID, &category.ID, amount, note, date); err != nil {
				return fmt.Errorf("create expense: %w", err)
			}
		}
	}

	// A couple of uncategorized expenses as well.
	for i := 0; i < 2; i++ {
		day := now.AddDate(0, 0, -gofakeit.Number(0, 59))
		date := core.NewDate(day.Year(), int(day.Month()), day.Day())
		amount := core.Money{Cents: int64(gofakeit.Number(100, 5000))}
		if _, err := repo.CreateExpense(ctx, user.ID, nil, amount, gofakeit.Sentence(3), date); err != nil {
			return fmt.Errorf("create uncategorized expense: %w", err)
		}
	}

	return nil
}

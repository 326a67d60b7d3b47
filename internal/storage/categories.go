package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// CreateCategory inserts a category for the user. A duplicate name for
// the same user surfaces as core.ErrCategoryExists.
func (r *Repository) CreateCategory(ctx context.Context, userID int64, name string) (core.Category, error) {
	ts := now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		userID, name, ts, ts)
	if err != nil {
		if isUniqueViolation(err, "categories") {
			return core.Category{}, core.ErrCategoryExists
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category id: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", id, "user_id", userID, "name", name)

	return core.Category{ID: id, UserID: userID, Name: name, CreatedAt: ts, UpdatedAt: ts}, nil
}

// ListCategories returns the user's categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM categories WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM categories WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// UpdateCategory renames a category. Renaming onto an existing name of
// the same user surfaces as core.ErrCategoryExists.
func (r *Repository) UpdateCategory(ctx context.Context, userID, id int64, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name, now(), id, userID)
	if err != nil {
		if isUniqueViolation(err, "categories") {
			return core.Category{}, core.ErrCategoryExists
		}
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return r.GetCategory(ctx, userID, id)
}

// DeleteCategory removes the category. Budgets on it cascade away;
// expenses keep living with a nil category reference.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Category deleted", "id", id, "user_id", userID)
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/model"
)

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db sqlx.QueryerContext) ([]model.Category, error) {
	categories := []model.Category{}
	if err := sqlx.SelectContext(ctx, db, &categories,
		`SELECT id, name FROM categories ORDER BY name`,
	); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// internal/repository/categories.go
package repository

import (
	"context"
	"database/sql"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"
)

const categoryIDQuery = `select category_id from "Categories" where name like $1`

// CategoryRepository resolves category names to their ids in the reporting store.
type CategoryRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewCategoryRepository(db *sql.DB, log logger.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, logger: log}
}

// FindIDByName returns the category id for a category name.
// Returns ("", nil) when no category matches.
func (r *CategoryRepository) FindIDByName(ctx context.Context, name string) (string, error) {
	row := r.db.QueryRowContext(ctx, categoryIDQuery, name)

	var categoryID string
	err := row.Scan(&categoryID)
	if err == sql.ErrNoRows {
		r.logger.Warn("category not found", map[string]interface{}{"name": name})
		return "", nil
	}
	if err != nil {
		return "", errors.NewQueryExecutionFailedError("category_id_by_name", err)
	}

	return categoryID, nil
}

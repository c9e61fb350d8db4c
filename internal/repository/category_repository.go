package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// CategoryRepository reads the free-form categories used on a user's tasks.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListByUser returns distinct category names, reporting legacy rows without one as general.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("name ASC").
		Pluck("COALESCE(NULLIF(TRIM(category), ''), 'general') AS name", &names).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return names, nil
}

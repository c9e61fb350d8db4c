package service

import (
	"context"

	"task-manager/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns the categories a user can filter by.
func (s *CategoryService) List(ctx context.Context, userID uint) ([]string, error) {
	return s.repo.ListByUser(ctx, userID)
}

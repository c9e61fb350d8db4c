package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// TaskRepository handles CRUD for tasks. Every method is scoped by owner.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts task and its tags and assigns the next order value for the owner.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextOrder(tx, task.UserID)
		if err != nil {
			return err
		}
		task.Order = &next
		return tx.Create(task).Error
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// nextOrder never reuses a position that a later backfill could hand to an older row.
func nextOrder(tx *gorm.DB, userID uint) (int, error) {
	var stats struct {
		Total    int64
		MaxOrder int64
	}
	if err := tx.Model(&model.Task{}).
		Select("COUNT(*) AS total, COALESCE(MAX(sort_order), 0) AS max_order").
		Where("user_id = ?", userID).
		Scan(&stats).Error; err != nil {
		return 0, fmt.Errorf("next order: %w", err)
	}
	next := stats.MaxOrder
	if stats.Total > next {
		next = stats.Total
	}
	return int(next) + 1, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Scopes(ownedBy(userID), withTags).
		Where("tasks.id = ?", taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Find runs a filter/sort query for one user.
func (r *TaskRepository) Find(ctx context.Context, userID uint, q model.TaskQuery) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Scopes(ownedBy(userID), filtered(q), sorted(q.Sort), withTags).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Search returns the user's tasks whose title contains query, newest first.
func (r *TaskRepository) Search(ctx context.Context, userID uint, query string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Scopes(ownedBy(userID), titleContains(query), sorted(model.SortNewest), withTags).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

// DistinctTags lists every tag name used by the user's tasks.
func (r *TaskRepository) DistinctTags(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.TaskTag{}).
		Joins("JOIN tasks ON tasks.id = task_tags.task_id").
		Where("tasks.user_id = ?", userID).
		Distinct().
		Order("task_tags.name ASC").
		Pluck("task_tags.name", &names).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return names, nil
}

// Update overwrites the editable fields and replaces tags. It returns
// gorm.ErrRecordNotFound when the task does not belong to task.UserID.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).Scopes(ownedBy(task.UserID)).
			Where("tasks.id = ?", task.ID).
			Updates(map[string]interface{}{
				"title":        task.Title,
				"priority":     task.Priority,
				"category":     task.Category,
				"due_date":     task.DueDate,
				"notes":        task.Notes,
				"feedback":     task.Feedback,
				"needs_review": task.NeedsReview,
				"completed":    task.Completed,
				"updated_at":   task.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskTag{}).Error; err != nil {
			return err
		}
		for i := range task.Tags {
			task.Tags[i].ID = 0
			task.Tags[i].TaskID = task.ID
		}
		if len(task.Tags) > 0 {
			if err := tx.Create(&task.Tags).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// ToggleCompleted flips the completed flag in a single statement.
func (r *TaskRepository) ToggleCompleted(ctx context.Context, userID, taskID uint, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Scopes(ownedBy(userID)).
		Where("tasks.id = ?", taskID).
		UpdateColumns(map[string]interface{}{
			"completed":  gorm.Expr("NOT completed"),
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("toggle task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a task and its tags for the given user and reports whether anything was removed.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&model.Task{}).Scopes(ownedBy(userID)).
			Where("tasks.id = ?", taskID).Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return nil
		}
		// Tags reference the task row, so they go first.
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskTag{}).Error; err != nil {
			return err
		}
		res := tx.Scopes(ownedBy(userID)).Where("tasks.id = ?", taskID).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return deleted, nil
}

// ListByCreation returns the user's tasks oldest first, without tags.
func (r *TaskRepository) ListByCreation(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Scopes(ownedBy(userID)).
		Order("tasks.created_at ASC").Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// FillOrder sets order only when the task has none yet. It reports whether the row changed.
func (r *TaskRepository) FillOrder(ctx context.Context, taskID uint, order int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND sort_order IS NULL", taskID).
		UpdateColumn("sort_order", order)
	if res.Error != nil {
		return false, fmt.Errorf("fill order: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListPendingDueBefore returns open tasks with a due date on or before cutoff, soonest first.
func (r *TaskRepository) ListPendingDueBefore(ctx context.Context, userID uint, cutoff time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Scopes(ownedBy(userID), withTags).
		Where("tasks.completed = ? AND tasks.due_date IS NOT NULL AND tasks.due_date <= ?", false, cutoff).
		Order("tasks.due_date ASC").Order("tasks.created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	return tasks, nil
}

// Summary counts the user's tasks for the dashboard.
func (r *TaskRepository) Summary(ctx context.Context, userID uint, today time.Time) (model.TaskSummary, error) {
	var summary model.TaskSummary
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN NOT completed THEN 1 ELSE 0 END), 0) AS pending, "+
				"COALESCE(SUM(CASE WHEN NOT completed AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue",
			today,
		).
		Where("user_id = ?", userID).
		Scan(&summary).Error; err != nil {
		return model.TaskSummary{}, fmt.Errorf("summarize tasks: %w", err)
	}
	return summary, nil
}

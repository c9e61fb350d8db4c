package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskInput represents data required to create a task, as typed by the user.
type TaskInput struct {
	Title    string
	Priority string
	Category string
	Tags     string // comma-separated
	DueDate  string // YYYY-MM-DD or empty
	Notes    string
	Feedback string
}

// EditTaskInput adds the flags only an edit may set.
type EditTaskInput struct {
	TaskInput
	Completed   bool
	NeedsReview bool
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
	now      func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, now: time.Now}
}

// fields is a validated TaskInput.
type fields struct {
	title    string
	priority model.Priority
	category string
	tags     []model.TaskTag
	dueDate  *time.Time
	notes    string
	feedback string
}

func validate(input TaskInput) (fields, error) {
	f := fields{
		title:    strings.TrimSpace(input.Title),
		priority: model.Priority(strings.ToLower(strings.TrimSpace(input.Priority))),
		category: strings.TrimSpace(input.Category),
		notes:    strings.TrimSpace(input.Notes),
		feedback: input.Feedback,
	}

	if f.title == "" {
		return fields{}, invalid("title", "Title is required")
	}

	if f.priority == "" {
		f.priority = model.PriorityMedium
	}
	if !f.priority.Valid() {
		return fields{}, invalid("priority", "Priority must be high, medium or low")
	}

	if f.category == "" {
		f.category = model.DefaultCategory
	}

	due, err := ParseDueDate(input.DueDate)
	if err != nil {
		return fields{}, err
	}
	f.dueDate = due

	for i, name := range ParseTags(input.Tags) {
		f.tags = append(f.tags, model.TaskTag{Name: name, Position: i})
	}

	return f, nil
}

// ParseTags splits comma-separated input, trimming entries and dropping empty
// and repeated (case-insensitive) ones. First spelling wins.
func ParseTags(raw string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// ParseDueDate accepts an empty string or a YYYY-MM-DD date and returns it at UTC midnight.
func ParseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return nil, invalid("due_date", "Invalid date format")
	}
	return &parsed, nil
}

func (s *TaskService) CreateTask(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	f, err := validate(input)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	category := f.category
	task := model.Task{
		UserID:    userID,
		Title:     f.title,
		Priority:  f.priority,
		Category:  &category,
		Tags:      f.tags,
		DueDate:   f.dueDate,
		Notes:     f.notes,
		Feedback:  f.feedback,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, notFound(err)
	}
	return task, nil
}

// UpdateTask overwrites the editable fields. CreatedAt and Order are left as stored.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, input EditTaskInput) (*model.Task, error) {
	f, err := validate(input.TaskInput)
	if err != nil {
		return nil, err
	}

	category := f.category
	task := model.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       f.title,
		Priority:    f.priority,
		Category:    &category,
		Tags:        f.tags,
		DueDate:     f.dueDate,
		Notes:       f.notes,
		Feedback:    f.feedback,
		NeedsReview: input.NeedsReview,
		Completed:   input.Completed,
		UpdatedAt:   s.now().UTC(),
	}

	if err := s.taskRepo.Update(ctx, &task); err != nil {
		return nil, notFound(err)
	}
	return s.GetTask(ctx, userID, taskID)
}

// ToggleTask flips the completion flag and returns the updated task.
func (s *TaskService) ToggleTask(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	if err := s.taskRepo.ToggleCompleted(ctx, userID, taskID, s.now().UTC()); err != nil {
		return nil, notFound(err)
	}
	return s.GetTask(ctx, userID, taskID)
}

// DeleteTask removes a task permanently and reports whether it existed for this user.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) (bool, error) {
	return s.taskRepo.Delete(ctx, userID, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, userID uint, q model.TaskQuery) ([]model.Task, error) {
	return s.taskRepo.Find(ctx, userID, q)
}

// SearchTasks matches titles case-insensitively. Filters and sorts do not apply.
func (s *TaskService) SearchTasks(ctx context.Context, userID uint, query string) ([]model.Task, error) {
	return s.taskRepo.Search(ctx, userID, strings.TrimSpace(query))
}

func (s *TaskService) ListTags(ctx context.Context, userID uint) ([]string, error) {
	return s.taskRepo.DistinctTags(ctx, userID)
}

func (s *TaskService) Summary(ctx context.Context, userID uint) (model.TaskSummary, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.taskRepo.Summary(ctx, userID, today)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	return err
}

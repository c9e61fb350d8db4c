package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"task-manager/internal/model"
)

func TestCreateTaskAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")

	task, err := env.taskSvc.CreateTask(context.Background(), user.ID, TaskInput{
		Title: "  Write report  ",
		Tags:  "work, urgent, ,Work",
		Notes: " draft first ",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Title != "Write report" {
		t.Fatalf("expected trimmed title, got %q", task.Title)
	}
	if task.Priority != model.PriorityMedium {
		t.Fatalf("expected medium priority, got %q", task.Priority)
	}
	if task.CategoryName() != model.DefaultCategory {
		t.Fatalf("expected general category, got %q", task.CategoryName())
	}
	if task.Completed || task.NeedsReview {
		t.Fatalf("expected new task to be open and not flagged")
	}
	if task.Order == nil || *task.Order != 1 {
		t.Fatalf("expected order 1, got %v", task.Order)
	}
	if got := task.TagNames(); !reflect.DeepEqual(got, []string{"work", "urgent"}) {
		t.Fatalf("unexpected tags %v", got)
	}
	if task.Notes != "draft first" {
		t.Fatalf("expected trimmed notes, got %q", task.Notes)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")

	cases := []struct {
		name  string
		input TaskInput
		field string
	}{
		{"blank title", TaskInput{Title: "   "}, "title"},
		{"bad priority", TaskInput{Title: "x", Priority: "urgent"}, "priority"},
		{"bad date", TaskInput{Title: "x", DueDate: "2024-13-45"}, "due_date"},
		{"wrong date layout", TaskInput{Title: "x", DueDate: "01/02/2024"}, "due_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.taskSvc.CreateTask(context.Background(), user.ID, tc.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}

	if n := env.countTasks(t); n != 0 {
		t.Fatalf("expected nothing persisted, found %d tasks", n)
	}
}

func TestCreateTaskParsesDueDate(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")

	task, err := env.taskSvc.CreateTask(context.Background(), user.ID, TaskInput{Title: "x", DueDate: "2024-03-15", Priority: "HIGH"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.DueDateString() != "2024-03-15" {
		t.Fatalf("expected due date 2024-03-15, got %q", task.DueDateString())
	}
	if task.Priority != model.PriorityHigh {
		t.Fatalf("expected case-insensitive priority, got %q", task.Priority)
	}
}

func TestToggleTaskTwiceRestoresState(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")
	ctx := context.Background()

	task, err := env.taskSvc.CreateTask(ctx, user.ID, TaskInput{Title: "flip"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	toggled, err := env.taskSvc.ToggleTask(ctx, user.ID, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatalf("expected task to be completed after one toggle")
	}
	toggled, err = env.taskSvc.ToggleTask(ctx, user.ID, task.ID)
	if err != nil {
		t.Fatalf("toggle again: %v", err)
	}
	if toggled.Completed {
		t.Fatalf("expected task to be open after two toggles")
	}
}

func TestUpdateTaskKeepsCreationAndOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	edited := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	env.taskSvc.now = fixedClock(created)
	task, err := env.taskSvc.CreateTask(ctx, user.ID, TaskInput{Title: "draft", Tags: "a"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	env.taskSvc.now = fixedClock(edited)
	updated, err := env.taskSvc.UpdateTask(ctx, user.ID, task.ID, EditTaskInput{
		TaskInput:   TaskInput{Title: "final", Priority: "low", Category: "work", Tags: "b, c"},
		Completed:   true,
		NeedsReview: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(edited) {
		t.Fatalf("expected updated_at %v, got %v", edited, updated.UpdatedAt)
	}
	if updated.Order == nil || *updated.Order != *task.Order {
		t.Fatalf("expected order to be unchanged, got %v", updated.Order)
	}
	if !updated.Completed || !updated.NeedsReview {
		t.Fatalf("expected flags to be set")
	}
	if updated.CategoryName() != "work" || updated.Priority != model.PriorityLow {
		t.Fatalf("unexpected fields %+v", updated)
	}
	if got := updated.TagNames(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected tags %v", got)
	}
}

func TestUpdateTaskRejectsInvalidInputWithoutChanges(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")
	ctx := context.Background()

	task, err := env.taskSvc.CreateTask(ctx, user.ID, TaskInput{Title: "keep me"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	_, err = env.taskSvc.UpdateTask(ctx, user.ID, task.ID, EditTaskInput{TaskInput: TaskInput{Title: ""}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := env.taskSvc.GetTask(ctx, user.ID, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "keep me" {
		t.Fatalf("expected title to survive, got %q", got.Title)
	}
}

func TestForeignTasksAreNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	ctx := context.Background()

	task, err := env.taskSvc.CreateTask(ctx, alice.ID, TaskInput{Title: "mine"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := env.taskSvc.GetTask(ctx, bob.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("get: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := env.taskSvc.UpdateTask(ctx, bob.ID, task.ID, EditTaskInput{TaskInput: TaskInput{Title: "stolen"}}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("update: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := env.taskSvc.ToggleTask(ctx, bob.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("toggle: expected ErrTaskNotFound, got %v", err)
	}
	deleted, err := env.taskSvc.DeleteTask(ctx, bob.ID, task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted {
		t.Fatalf("expected delete of a foreign task to report false")
	}

	got, err := env.taskSvc.GetTask(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("get own task: %v", err)
	}
	if got.Title != "mine" || got.Completed {
		t.Fatalf("expected task to be untouched, got %+v", got)
	}
}

func TestDeleteTaskRemovesTags(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")
	ctx := context.Background()

	task, err := env.taskSvc.CreateTask(ctx, user.ID, TaskInput{Title: "gone", Tags: "x, y"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	deleted, err := env.taskSvc.DeleteTask(ctx, user.ID, task.ID)
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %v %v", deleted, err)
	}
	if _, err := env.taskSvc.GetTask(ctx, user.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected task to be gone, got %v", err)
	}
	tags, err := env.taskSvc.ListTags(ctx, user.ID)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected no tags left, got %v", tags)
	}
}

func TestSearchTasksIgnoresSurroundingSpace(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")
	ctx := context.Background()

	for _, title := range []string{"Buy milk", "Sell car"} {
		if _, err := env.taskSvc.CreateTask(ctx, user.ID, TaskInput{Title: title}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	tasks, err := env.taskSvc.SearchTasks(ctx, user.ID, "  MILK ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("unexpected results %+v", tasks)
	}
}

func TestParseTags(t *testing.T) {
	cases := map[string][]string{
		"":                  {},
		" , ,":              {},
		"a,b":               {"a", "b"},
		" Work , work,Home": {"Work", "Home"},
	}
	for raw, want := range cases {
		if got := ParseTags(raw); !reflect.DeepEqual(got, want) {
			t.Fatalf("ParseTags(%q) = %v, want %v", raw, got, want)
		}
	}
}

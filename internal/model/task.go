package model

import (
	"strings"
	"time"
)

// Priority ranks a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultCategory is assigned to new tasks and matches legacy rows without a category.
const DefaultCategory = "general"

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a single to-do item owned by one user.
// Category and Order are nil for legacy rows created before those fields existed.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"-"`
	Title       string     `gorm:"not null" json:"title"`
	Priority    Priority   `gorm:"size:16;not null" json:"priority"`
	Category    *string    `gorm:"index" json:"category"`
	Tags        []TaskTag  `gorm:"foreignKey:TaskID" json:"tags"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes"`
	Feedback    string     `json:"feedback"`
	NeedsReview bool       `gorm:"not null;default:false" json:"needs_review"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Order       *int       `gorm:"column:sort_order;index" json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskTag is one tag of a task. Position keeps the order the user typed them in.
type TaskTag struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	TaskID   uint   `gorm:"index;not null" json:"-"`
	Name     string `gorm:"index;not null" json:"name"`
	Position int    `gorm:"not null" json:"-"`
}

// CategoryName returns the task's category, treating a missing one as DefaultCategory.
func (t Task) CategoryName() string {
	if t.Category == nil || strings.TrimSpace(*t.Category) == "" {
		return DefaultCategory
	}
	return *t.Category
}

// TagNames lists tag names in display order.
func (t Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// DueDateString formats the due date for forms, or returns "" when unset.
func (t Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// StatusFilter narrows tasks by completion.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

// TaskSort selects the ordering of a task listing.
type TaskSort string

const (
	SortNewest       TaskSort = "newest"
	SortOldest       TaskSort = "oldest"
	SortAlphabetical TaskSort = "alphabetical"
	SortDueDate      TaskSort = "due_date"
)

// TaskQuery is a parsed filter/sort request. Empty Priority, Category and Tag mean "all".
type TaskQuery struct {
	Status   StatusFilter
	Priority Priority
	Category string
	Tag      string
	Sort     TaskSort
}

// TaskSummary holds dashboard counters.
type TaskSummary struct {
	Total     int64
	Completed int64
	Pending   int64
	Overdue   int64
}

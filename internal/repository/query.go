package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-manager/internal/model"
)

// ownedBy restricts a task query to one user. Every read and write goes through it.
func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.user_id = ?", userID)
	}
}

// filtered applies the AND-combined filters of q.
func filtered(q model.TaskQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch q.Status {
		case model.StatusCompleted:
			db = db.Where("tasks.completed = ?", true)
		case model.StatusPending:
			db = db.Where("tasks.completed = ?", false)
		}

		if q.Priority != "" {
			db = db.Where("tasks.priority = ?", q.Priority)
		}

		switch {
		case q.Category == model.DefaultCategory:
			// Rows created before categories existed, or saved blank, count as general.
			db = db.Where(clause.Or(
				clause.Eq{Column: clause.Column{Table: "tasks", Name: "category"}, Value: model.DefaultCategory},
				clause.Eq{Column: clause.Column{Table: "tasks", Name: "category"}, Value: nil},
				clause.Expr{SQL: "TRIM(tasks.category) = ''"},
			))
		case q.Category != "":
			db = db.Where("tasks.category = ?", q.Category)
		}

		if q.Tag != "" {
			db = db.Where("EXISTS (SELECT 1 FROM task_tags WHERE task_tags.task_id = tasks.id AND task_tags.name = ?)", q.Tag)
		}

		return db
	}
}

// sorted orders a listing.
func sorted(s model.TaskSort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch s {
		case model.SortOldest:
			return db.Order("tasks.created_at ASC")
		case model.SortAlphabetical:
			return db.Order("tasks.title ASC")
		case model.SortDueDate:
			return db.Order("tasks.due_date ASC NULLS LAST").Order("tasks.created_at DESC")
		default:
			return db.Order("tasks.created_at DESC")
		}
	}
}

// titleContains matches a case-insensitive literal substring of the title.
func titleContains(query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if query == "" {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
		return db.Where("fold(tasks.title) LIKE ? ESCAPE '\\'", pattern)
	}
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// withTags preloads tags in display order.
func withTags(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("task_tags.position ASC")
	})
}

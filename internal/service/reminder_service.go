package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// dueSoonWindow is how far ahead a digest looks.
const dueSoonWindow = 48 * time.Hour

// Notifier delivers a digest to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// ReminderService builds human-readable digests of open tasks that are due soon.
type ReminderService struct {
	userRepo *repository.UserRepository
	taskRepo *repository.TaskRepository
	notifier Notifier
}

func NewReminderService(userRepo *repository.UserRepository, taskRepo *repository.TaskRepository, notifier Notifier) *ReminderService {
	return &ReminderService{userRepo: userRepo, taskRepo: taskRepo, notifier: notifier}
}

// Digest lists the user's open tasks due by now+48h. It returns "" when there are none.
func (s *ReminderService) Digest(ctx context.Context, user model.User, now time.Time) (string, error) {
	now = now.UTC()
	tasks, err := s.taskRepo.ListPendingDueBefore(ctx, user.ID, now.Add(dueSoonWindow))
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "", nil
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Tasks due soon for %s</b>\n", html.EscapeString(user.Username)))
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format(model.DateLayout)))
	for _, task := range tasks {
		builder.WriteString(formatDigestLine(task, now))
	}
	return strings.TrimSpace(builder.String()), nil
}

// SendDigests delivers a digest to every user with a Telegram chat id.
// Failures for one user are logged and do not stop the others.
func (s *ReminderService) SendDigests(ctx context.Context, now time.Time) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}

	users, err := s.userRepo.ListWithTelegram(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		default:
		}
		if user.TelegramChatID == nil {
			continue
		}
		text, err := s.Digest(ctx, user, now)
		if err != nil {
			log.Printf("[error] build digest for user %d: %v", user.ID, err)
			continue
		}
		if text == "" {
			continue
		}
		if err := s.notifier.Notify(ctx, *user.TelegramChatID, text); err != nil {
			log.Printf("[error] send digest to user %d: %v", user.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func formatDigestLine(task model.Task, now time.Time) string {
	var sb strings.Builder

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	icon := "⏳"
	overdue := task.DueDate != nil && task.DueDate.Before(today)
	if overdue {
		icon = "⚠️"
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title))))
	if task.Priority == model.PriorityHigh {
		sb.WriteString(" <b>(high)</b>")
	}
	sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(task.CategoryName())))

	if task.DueDate != nil {
		if overdue {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s, <b>overdue</b>", task.DueDateString()))
		} else {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", task.DueDateString()))
		}
	}

	if task.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(task.Notes)))
	}

	sb.WriteByte('\n')
	return sb.String()
}

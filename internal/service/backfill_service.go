package service

import (
	"context"
	"fmt"
	"log"

	"task-manager/internal/repository"
)

// BackfillReport summarises one order backfill run.
type BackfillReport struct {
	Users   int
	Scanned int
	Updated int
}

// OrderBackfillService repairs tasks that predate the order field.
type OrderBackfillService struct {
	userRepo *repository.UserRepository
	taskRepo *repository.TaskRepository
}

func NewOrderBackfillService(userRepo *repository.UserRepository, taskRepo *repository.TaskRepository) *OrderBackfillService {
	return &OrderBackfillService{userRepo: userRepo, taskRepo: taskRepo}
}

// Run numbers each user's tasks 1..N by creation time and writes that number into
// tasks that have no order yet. Existing values are never touched, so a second run
// changes nothing. The run is not atomic across tasks.
func (s *OrderBackfillService) Run(ctx context.Context) (BackfillReport, error) {
	var report BackfillReport

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("list users: %w", err)
	}

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		tasks, err := s.taskRepo.ListByCreation(ctx, user.ID)
		if err != nil {
			return report, err
		}
		report.Users++

		for i, task := range tasks {
			report.Scanned++
			if task.Order != nil {
				continue
			}
			changed, err := s.taskRepo.FillOrder(ctx, task.ID, i+1)
			if err != nil {
				return report, err
			}
			if changed {
				report.Updated++
			}
		}
	}

	log.Printf("[info] order backfill users=%d scanned=%d updated=%d", report.Users, report.Scanned, report.Updated)
	return report, nil
}

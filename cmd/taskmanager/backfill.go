package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

func backfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-order",
		Short: "Assign order to tasks that predate it",
		Long: `Numbers every user's tasks by creation time and fills that number into
tasks without an order. Tasks that already have one are left alone, so the
command can be run repeatedly.`,
		RunE: runBackfill,
	}
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer repository.Close(db)

	svc := service.NewOrderBackfillService(repository.NewUserRepository(db), repository.NewTaskRepository(db))
	report, err := svc.Run(context.Background())
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added order to %d task(s) across %d user(s) (%d scanned)\n",
		report.Updated, report.Users, report.Scanned)
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"task-manager/internal/config"
	"task-manager/internal/repository"
)

func pingCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the store is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.Load(envFile)
			if err != nil {
				fmt.Fprintf(out, "✗ Connection failed:\n%v\n", err)
				return nil
			}

			if err := checkStore(cmd.Context(), cfg.DatabaseURL, timeout); err != nil {
				fmt.Fprintf(out, "✗ Connection failed:\n%v\n", err)
				return nil
			}
			fmt.Fprintf(out, "✓ Successfully connected to %s\n", cfg.DatabaseURL)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "server selection timeout")
	return cmd
}

func checkStore(ctx context.Context, dsn string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := repository.NewDB(dsn)
	if err != nil {
		return err
	}
	defer repository.Close(db)
	return repository.Ping(ctx, db, timeout)
}

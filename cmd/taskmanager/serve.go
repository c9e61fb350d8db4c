package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"task-manager/internal/bot"
	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/internal/service"
	"task-manager/internal/session"
	"task-manager/internal/web"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server and scheduled jobs",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer repository.Close(db)

	if err := repository.Ping(ctx, db, cfg.StoreTimeout); err != nil {
		return fmt.Errorf("store unreachable at %s: %w", cfg.DatabaseURL, err)
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	sessions := session.NewManager(cfg.SecretKey, cfg.SessionTTL)
	authSvc := service.NewAuthService(userRepo, service.NewBcryptHasher(0), sessions)
	taskSvc := service.NewTaskService(taskRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	backfillSvc := service.NewOrderBackfillService(userRepo, taskRepo)

	scheduler := service.NewSchedulerService(time.Local, time.Minute)
	if cfg.TelegramToken != "" {
		notifier, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		reminderSvc := service.NewReminderService(userRepo, taskRepo, notifier)
		if _, err := scheduler.ScheduleDaily("reminders", cfg.ReminderTime, func(ctx context.Context) error {
			sent, err := reminderSvc.SendDigests(ctx, time.Now())
			if err == nil {
				log.Printf("[info] reminders sent=%d", sent)
			}
			return err
		}); err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
	}
	if cfg.BackfillInterval > 0 {
		if _, err := scheduler.ScheduleInterval("order-backfill", cfg.BackfillInterval, func(ctx context.Context) error {
			_, err := backfillSvc.Run(ctx)
			return err
		}); err != nil {
			return fmt.Errorf("schedule backfill: %w", err)
		}
	}
	if scheduler.Entries() > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := web.NewServer(web.Options{
		Auth:          authSvc,
		Tasks:         taskSvc,
		Categories:    categorySvc,
		StoreTimeout:  cfg.StoreTimeout,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.Production(),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] web server running at http://localhost%s", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("[info] shutdown complete")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"learnhub/internal/client"
	"learnhub/internal/events"
	"learnhub/internal/metrics"
	"learnhub/internal/repository"
	"learnhub/internal/server"
	"learnhub/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg
	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	metrics.Register()

	publisher, err := events.NewPublisher(cfg.Kafka, a.log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	processor := client.NewBraintreeClient(&cfg.BrainTree, cfg.Payments.Currency)

	courseRepo := repository.NewCourseRepository(a.db)
	lessonRepo := repository.NewLessonRepository(a.db)
	paymentRepo := repository.NewPaymentRepository(a.db)
	subscriberRepo := repository.NewSubscriberRepository(a.db)
	notificationRepo := repository.NewNotificationRepository(a.db)
	userRepo := repository.NewUserRepository(a.db)

	scheduler := service.NewNotificationScheduler(
		notificationRepo,
		cfg.Notifications.Offset,
		cfg.Notifications.Grace,
		a.log,
	)

	paymentService := service.NewPaymentService(
		service.NewProductLocator(courseRepo, lessonRepo),
		service.NewCardAuthorizer(processor, cfg.Payments.Currency, cfg.Payments.AuthorizeTimeout, a.log),
		paymentRepo,
		publisher,
		cfg.Payments.Currency,
		a.log,
	)

	srv := server.NewServer(a.log, cfg.Auth.JWTSecret, server.Services{
		Payments:    paymentService,
		Courses:     service.NewCourseService(courseRepo, scheduler, a.log),
		Lessons:     service.NewLessonService(lessonRepo, courseRepo, paymentRepo, scheduler, a.log),
		Subscribers: service.NewSubscriberService(courseRepo, subscriberRepo),
		Users:       service.NewUserService(userRepo),
	})

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http server shutdown error", zap.Error(err))
		return err
	}
	return nil
}

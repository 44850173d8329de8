package main

import (
	"net/http"
	"os/signal"
	"syscall"

	"learnhub/internal/client"
	"learnhub/internal/metrics"
	"learnhub/internal/repository"
	"learnhub/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func workerCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Fire due course notifications and deactivate idle users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			cfg := a.cfg
			metrics.Register()

			if metricsAddr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						a.log.Error("metrics server stopped", zap.Error(err))
					}
				}()
			}

			courseRepo := repository.NewCourseRepository(a.db)
			dispatcher := service.NewNotificationDispatcher(
				courseRepo,
				repository.NewSubscriberRepository(a.db),
				client.NewMailer(&cfg.Mailer, a.log),
				cfg.BaseURL,
				cfg.Notifications,
				a.log,
			)

			worker := service.NewNotificationWorker(
				repository.NewNotificationRepository(a.db),
				repository.NewUserRepository(a.db),
				dispatcher,
				service.WorkerConfig{
					PollInterval:          cfg.Notifications.PollInterval,
					BatchSize:             cfg.Notifications.BatchSize,
					InactiveAfter:         cfg.Users.InactiveAfter,
					ActivityCheckInterval: cfg.Users.ActivityCheckInterval,
				},
				a.log,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return worker.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "address for the Prometheus endpoint, empty to disable")

	return cmd
}

package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"learnhub/internal/client"
	"learnhub/internal/config"
	"learnhub/internal/metrics"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type DispatchReport struct {
	Recipients int
	Sent       int
	Failed     int
}

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, courseID uint) (DispatchReport, error)
}

type notificationDispatcherImpl struct {
	courseRepo     repository.CourseRepository
	subscriberRepo repository.SubscriberRepository
	mailer         client.Mailer
	baseURL        string
	concurrency    int
	attempts       uint
	delay          time.Duration
	log            *zap.Logger
}

func NewNotificationDispatcher(
	courseRepo repository.CourseRepository,
	subscriberRepo repository.SubscriberRepository,
	mailer client.Mailer,
	baseURL string,
	cfg config.Notifications,
	log *zap.Logger,
) NotificationDispatcher {
	concurrency := cfg.SendConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	attempts := cfg.SendAttempts
	if attempts == 0 {
		attempts = 1
	}

	return &notificationDispatcherImpl{
		courseRepo:     courseRepo,
		subscriberRepo: subscriberRepo,
		mailer:         mailer,
		baseURL:        strings.TrimRight(baseURL, "/"),
		concurrency:    concurrency,
		attempts:       attempts,
		delay:          cfg.SendDelay,
		log:            log.Named("dispatcher"),
	}
}

// Dispatch mails the course's current state to everyone subscribed right now.
// A recipient that cannot be reached is logged and counted; the others still get their message.
func (d *notificationDispatcherImpl) Dispatch(ctx context.Context, courseID uint) (DispatchReport, error) {
	course, err := d.courseRepo.FindByID(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DispatchReport{}, ErrCourseNotFound
	}
	if err != nil {
		return DispatchReport{}, fmt.Errorf("load course %d: %w", courseID, err)
	}

	recipients, err := d.subscriberRepo.ListEmails(ctx, courseID)
	if err != nil {
		return DispatchReport{}, fmt.Errorf("list subscribers of course %d: %w", courseID, err)
	}

	subject, body := d.render(course)

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, recipient := range recipients {
		recipient := recipient
		g.Go(func() error {
			if err := d.send(gctx, recipient, subject, body); err != nil {
				failed.Add(1)
				metrics.EmailsSent.WithLabelValues("failed").Inc()
				d.log.Warn("course notification not delivered",
					zap.Uint("course_id", courseID),
					zap.String("recipient", recipient),
					zap.Error(err),
				)
				return nil
			}
			sent.Add(1)
			metrics.EmailsSent.WithLabelValues("sent").Inc()
			return nil
		})
	}
	_ = g.Wait()

	report := DispatchReport{
		Recipients: len(recipients),
		Sent:       int(sent.Load()),
		Failed:     int(failed.Load()),
	}
	d.log.Info("course notification dispatched",
		zap.Uint("course_id", courseID),
		zap.Int("recipients", report.Recipients),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}

func (d *notificationDispatcherImpl) send(ctx context.Context, recipient, subject, body string) error {
	return retry.Do(
		func() error {
			return d.mailer.Send(ctx, recipient, subject, body)
		},
		retry.Context(ctx),
		retry.Attempts(d.attempts),
		retry.Delay(d.delay),
		retry.RetryIf(client.IsRetryable),
		retry.LastErrorOnly(true),
	)
}

func (d *notificationDispatcherImpl) render(course *model.Course) (string, string) {
	subject := fmt.Sprintf("Course - %s Update Notification", course.Title)

	title := html.EscapeString(course.Title)
	link := fmt.Sprintf("%s/api/courses/%d", d.baseURL, course.ID)

	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>%s has been updated</h2>", title)
	fmt.Fprintf(&b, "<p>The course <strong>%s</strong> was modified on %s.</p>",
		title, course.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, `<p><a href="%s">View the course</a></p>`, html.EscapeString(link))
	b.WriteString("</body></html>")

	return subject, b.String()
}

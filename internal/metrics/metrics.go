package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PaymentOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_payment_outcomes_total",
			Help: "Payment attempts by product kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	AuthorizationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "learnhub_card_authorization_duration_seconds",
			Help:    "Time spent talking to the card processor",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	NotificationsScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_notifications_scheduled_total",
			Help: "Course update notifications scheduled or rescheduled",
		},
	)

	NotificationJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_notification_jobs_total",
			Help: "Due notification jobs by result",
		},
		[]string{"result"},
	)

	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_emails_total",
			Help: "Notification emails by result",
		},
		[]string{"result"},
	)

	UsersDeactivated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_users_deactivated_total",
			Help: "Users deactivated for inactivity",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPRequestDuration,
			PaymentOutcomes,
			AuthorizationDuration,
			NotificationsScheduled,
			NotificationJobs,
			EmailsSent,
			UsersDeactivated,
		)
	})
}

package server

import (
	"context"
	"net/http"

	"learnhub/internal/handler"
	authmw "learnhub/internal/middleware"
	"learnhub/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Services struct {
	Payments    service.PaymentService
	Courses     service.CourseService
	Lessons     service.LessonService
	Subscribers service.SubscriberService
	Users       service.UserService
}

type Server struct {
	echo           *echo.Echo
	log            *zap.Logger
	auth           echo.MiddlewareFunc
	paymentHandler *handler.PaymentHandler
	courseHandler  *handler.CourseHandler
	lessonHandler  *handler.LessonHandler
	userHandler    *handler.UserHandler
}

func NewServer(log *zap.Logger, jwtSecret string, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(authmw.MetricsMiddleware())

	s := &Server{
		echo:           e,
		log:            log,
		auth:           authmw.AuthMiddleware(jwtSecret, services.Users),
		paymentHandler: handler.NewPaymentHandler(services.Payments),
		courseHandler:  handler.NewCourseHandler(services.Courses, services.Subscribers),
		lessonHandler:  handler.NewLessonHandler(services.Lessons),
		userHandler:    handler.NewUserHandler(services.Users),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	authed := api.Group("", s.auth)

	authed.GET("/users/me", s.userHandler.Me)

	// -------- payments --------
	authed.GET("/payments", s.paymentHandler.List)
	authed.POST("/payments/:kind/:id", s.paymentHandler.Pay)

	// -------- courses --------
	authed.GET("/courses/:id", s.courseHandler.Get)
	authed.PATCH("/courses/:id", s.courseHandler.Update)
	authed.POST("/courses/:id/subscribe", s.courseHandler.Subscribe)

	// -------- lessons --------
	authed.GET("/lessons/:id", s.lessonHandler.Get)
	authed.PATCH("/lessons/:id", s.lessonHandler.Update)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	s.log.Info("starting HTTP server", zap.String("address", address))
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

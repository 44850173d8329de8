package handler

import (
	"net/http"

	"learnhub/internal/dto"
	"learnhub/internal/middleware"
	"learnhub/internal/service"

	"github.com/labstack/echo/v4"
)

type CourseHandler struct {
	courseService     service.CourseService
	subscriberService service.SubscriberService
}

func NewCourseHandler(courseService service.CourseService, subscriberService service.SubscriberService) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		subscriberService: subscriberService,
	}
}

func (h *CourseHandler) Get(c echo.Context) error {
	courseID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	course, err := h.courseService.Get(c.Request().Context(), courseID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Update(c echo.Context) error {
	courseID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.CourseUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	course, err := h.courseService.Update(c.Request().Context(), courseID, service.CourseChanges{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, course)
}

// Subscribe toggles the caller's subscription to course update emails.
func (h *CourseHandler) Subscribe(c echo.Context) error {
	courseID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	subscribed, err := h.subscriberService.Toggle(c.Request().Context(), middleware.UserID(c), courseID)
	if err != nil {
		return writeError(c, err)
	}

	if subscribed {
		return c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Subscribed successfully"})
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Unsubscribed successfully"})
}

package handler

import (
	"net/http"

	"learnhub/internal/dto"
	"learnhub/internal/middleware"
	"learnhub/internal/service"

	"github.com/labstack/echo/v4"
)

type LessonHandler struct {
	lessonService service.LessonService
}

func NewLessonHandler(lessonService service.LessonService) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
	}
}

func (h *LessonHandler) Get(c echo.Context) error {
	lessonID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	lesson, err := h.lessonService.Get(c.Request().Context(), middleware.UserID(c), lessonID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, lesson)
}

func (h *LessonHandler) Update(c echo.Context) error {
	lessonID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.LessonUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	lesson, err := h.lessonService.Update(c.Request().Context(), middleware.UserID(c), lessonID, service.LessonChanges{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Price:       req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, lesson)
}

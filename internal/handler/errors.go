package handler

import (
	"errors"
	"net/http"
	"strconv"

	"learnhub/internal/dto"
	"learnhub/internal/service"

	"github.com/labstack/echo/v4"
)

// writeError maps service errors onto responses. Anything unknown goes to echo's
// error handler as a 500.
func writeError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, dto.ErrorsResponse{Errors: verr.Fields})
	case errors.Is(err, service.ErrAlreadyPurchased):
		return echo.NewHTTPError(http.StatusConflict, "You have already purchased this product.")
	case errors.Is(err, service.ErrUnknownProductKind),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action.")
	}
	return err
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found.")
	}
	return uint(id), nil
}

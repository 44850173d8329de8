package handler

import (
	"net/http"
	"strconv"

	"learnhub/internal/dto"
	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"learnhub/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) Pay(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.paymentService.Pay(ctx, middleware.UserID(c), c.Param("kind"), productID, req.Card())
	if err != nil {
		return writeError(c, err)
	}

	outcome := result.Outcome
	switch outcome.Status {
	case model.OutcomeStatusSuccess:
		p := result.Payment
		return c.JSON(http.StatusOK, dto.PaymentResponse{
			Status:         string(outcome.Status),
			Reference:      p.Reference,
			ConfirmationID: p.ConfirmationID,
			PaidPrice:      p.PaidPrice,
			Amount:         decimal.New(p.PaidPrice, -2).StringFixed(2),
			Currency:       p.Currency,
			PaymentMethod:  p.PaymentMethod,
		})
	case model.OutcomeStatusDeclined:
		return c.JSON(http.StatusPaymentRequired, dto.DeclinedResponse{
			Status:  string(outcome.Status),
			Code:    outcome.ProcessorCode,
			Message: outcome.ProcessorMessage,
		})
	default:
		return c.JSON(http.StatusBadRequest, dto.TransportErrorResponse{
			Status:  string(outcome.Status),
			Message: "Payment could not be processed, please try again.",
		})
	}
}

func (h *PaymentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.PaymentFilter{
		UserID:        middleware.UserID(c),
		PaymentMethod: c.QueryParam("payment_method"),
	}

	verr := map[string][]string{}
	for param, target := range map[string]**uint{"course": &filter.CourseID, "lesson": &filter.LessonID} {
		raw := c.QueryParam(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			verr[param] = append(verr[param], "Select a valid choice.")
			continue
		}
		v := uint(id)
		*target = &v
	}

	switch c.QueryParam("ordering") {
	case "", "-created_at":
	case "created_at":
		filter.OldestFirst = true
	default:
		verr["ordering"] = append(verr["ordering"], "Ordering must be created_at or -created_at.")
	}

	if len(verr) > 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorsResponse{Errors: verr})
	}

	payments, err := h.paymentService.List(ctx, filter)
	if err != nil {
		return err
	}

	items := make([]dto.PaymentItem, len(payments))
	for i, p := range payments {
		items[i] = dto.NewPaymentItem(p)
	}

	return c.JSON(http.StatusOK, items)
}

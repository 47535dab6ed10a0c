package handler

import (
	"errors"
	"net/http"

	"subscription-service/internal/dto"
	"subscription-service/internal/model"
	"subscription-service/internal/repository"
	"subscription-service/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.CreateProvisional(ctx, req.UserID, req.TransactionID, req.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.NewSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()

	sub, err := h.subscriptionService.GetByTransactionID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, dto.NewSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.ListFilter{
		UserID:   c.QueryParam("user_id"),
		Status:   model.Status(c.QueryParam("status")),
		Viewable: c.QueryParam("viewable") == "true",
	}

	subs, err := h.subscriptionService.List(ctx, filter)
	if err != nil {
		return err
	}

	resp := make([]*dto.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		resp[i] = dto.NewSubscriptionResponse(sub)
	}

	return c.JSON(http.StatusOK, resp)
}

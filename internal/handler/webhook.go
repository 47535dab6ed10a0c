package handler

import (
	"net/http"

	"subscription-service/internal/dto"
	"subscription-service/internal/model"
	"subscription-service/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *zap.Logger
}

func NewWebhookHandler(webhookService service.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// HandleAppleWebhook always answers 200. Failing the delivery would only
// make the provider resend notifications that fail for non-transient
// reasons; failures are recorded on the event row instead.
func (h *WebhookHandler) HandleAppleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	var n dto.WebhookNotification
	if err := c.Bind(&n); err != nil {
		h.logger.Error("malformed webhook payload", zap.Error(err))
		return h.ok(c)
	}
	if err := c.Validate(&n); err != nil {
		h.logger.Error("invalid webhook payload", zap.Error(err))
		return h.ok(c)
	}

	result := h.webhookService.ProcessEvent(ctx, &n)
	if result.Outcome == service.OutcomeFailure {
		h.logger.Error("webhook not applied",
			zap.String("notification_token", n.NotificationToken),
			zap.Error(result.Err))
	}

	return h.ok(c)
}

func (h *WebhookHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()

	status, ok := model.ParseProcessingStatus(c.QueryParam("status"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be pending, processed or failed")
	}

	events, err := h.webhookService.ListEvents(ctx, status)
	if err != nil {
		return err
	}

	resp := make([]*dto.WebhookEventResponse, len(events))
	for i, ev := range events {
		resp[i] = dto.NewWebhookEventResponse(ev)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *WebhookHandler) ok(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

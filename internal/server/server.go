package server

import (
	"net/http"

	"subscription-service/internal/handler"
	"subscription-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo                *echo.Echo
	webhookHandler      *handler.WebhookHandler
	subscriptionHandler *handler.SubscriptionHandler
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func NewServer(webhookService service.WebhookService, subscriptionService service.SubscriptionService, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:                e,
		webhookHandler:      handler.NewWebhookHandler(webhookService, logger),
		subscriptionHandler: handler.NewSubscriptionHandler(subscriptionService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	v1 := api.Group("/v1")

	// -------- subscriptions --------
	v1.POST("/subscriptions", s.subscriptionHandler.Create)
	v1.GET("/subscriptions", s.subscriptionHandler.List)
	v1.GET("/subscriptions/:id", s.subscriptionHandler.Show)

	// -------- apple webhooks --------
	apple := v1.Group("/apple")
	apple.POST("/webhooks", s.webhookHandler.HandleAppleWebhook)
	apple.GET("/webhooks/events", s.webhookHandler.ListEvents)
}

// Echo exposes the underlying router for request-level tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

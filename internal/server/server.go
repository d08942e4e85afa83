package server

import (
	"context"
	"log/slog"
	"net/http"

	"eventpass/internal/handler"
	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is the local HTTP surface the app flows run through: auth,
// browse, checkout, wallet, and the admin order/scan tools.
type Server struct {
	echo *echo.Echo

	authHandler    *handler.AuthHandler
	eventHandler   *handler.EventHandler
	orderHandler   *handler.OrderHandler
	ticketHandler  *handler.TicketHandler
	paymentHandler *handler.PaymentHandler
	adminHandler   *handler.AdminHandler
}

func NewServer(
	sessions service.SessionService,
	events service.EventService,
	orders service.OrderService,
	tickets service.TicketService,
	payments service.PaymentService,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("10M"))

	s := &Server{
		echo:           e,
		authHandler:    handler.NewAuthHandler(sessions),
		eventHandler:   handler.NewEventHandler(events, sessions),
		orderHandler:   handler.NewOrderHandler(orders, sessions),
		ticketHandler:  handler.NewTicketHandler(tickets, sessions),
		paymentHandler: handler.NewPaymentHandler(payments, sessions),
		adminHandler:   handler.NewAdminHandler(orders, tickets, sessions),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/login", s.authHandler.Login)
	auth.POST("/register", s.authHandler.Register)
	auth.POST("/logout", s.authHandler.Logout)
	auth.GET("/me", s.authHandler.Me)

	// -------- browse --------
	api.GET("/events", s.eventHandler.List)
	api.GET("/events/:id", s.eventHandler.Get)

	// -------- checkout / orders --------
	api.POST("/orders", s.orderHandler.Checkout)
	api.GET("/orders", s.orderHandler.List)
	api.GET("/orders/:id", s.orderHandler.Get)

	// -------- payment instructions --------
	api.GET("/payment-methods", s.paymentHandler.Methods)
	api.POST("/payments/:orderID/confirmation", s.paymentHandler.SubmitConfirmation)

	// -------- ticket wallet --------
	api.GET("/tickets", s.ticketHandler.List)
	api.GET("/tickets/:id", s.ticketHandler.Get)
	api.GET("/tickets/:id/pass", s.ticketHandler.Pass)

	// -------- admin --------
	admin := api.Group("/admin")
	admin.GET("/orders/pending", s.adminHandler.PendingOrders)
	admin.POST("/orders/:id/approve", s.adminHandler.Approve)
	admin.POST("/orders/:id/reject", s.adminHandler.Reject)
	admin.POST("/scan", s.adminHandler.Scan)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

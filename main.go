package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nthoangDev/event-management/config"
	"github.com/nthoangDev/event-management/internal/consumer"
	"github.com/nthoangDev/event-management/internal/handler"
	"github.com/nthoangDev/event-management/internal/middleware"
	"github.com/nthoangDev/event-management/internal/repository"
	"github.com/nthoangDev/event-management/internal/service"
	"github.com/nthoangDev/event-management/internal/vnpay"
	"github.com/nthoangDev/event-management/pkg/database"
	"github.com/nthoangDev/event-management/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Consumer side of the ticket.booked hook: materializes notifications
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ consumer: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	consumer.NewNotificationConsumer(notificationRepo).Start(msgs)

	// Gateway client
	gateway := vnpay.New(vnpay.Config{
		TmnCode:    cfg.VNPayTmnCode,
		HashSecret: cfg.VNPayHashSecret,
		PayURL:     cfg.VNPayPayURL,
		ReturnURL:  cfg.VNPayReturnURL,
	})

	// Services
	eventSvc := service.NewEventService(eventRepo, publisher)
	ticketSvc := service.NewTicketService(ticketRepo, eventRepo, cfg.HoldDuration)
	paymentSvc := service.NewPaymentService(paymentRepo, ticketRepo, gateway, publisher)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "event-management"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewEventHandler(eventSvc).RegisterRoutes(e.Group("/api/v1/events"))
	handler.NewTicketHandler(ticketSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(e)
	handler.NewNotificationHandler(notificationRepo).RegisterRoutes(e)

	log.Printf("Event Management starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/studyroom/reservation-service/config"
	"github.com/studyroom/reservation-service/internal/handler"
	"github.com/studyroom/reservation-service/internal/middleware"
	"github.com/studyroom/reservation-service/internal/repository"
	"github.com/studyroom/reservation-service/internal/service"
	"github.com/studyroom/reservation-service/internal/timeslot"
	"github.com/studyroom/reservation-service/pkg/database"
	"github.com/studyroom/reservation-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	var store repository.Store
	switch cfg.StorageDriver {
	case "csv":
		store = repository.NewCSVStore(cfg.CSVPath)
	case "sqlite":
		store = repository.NewGormStore(database.NewSQLiteDB(cfg.SQLitePath))
	case "postgres":
		store = repository.NewGormStore(database.NewPostgresDB(cfg.DSN()))
	case "memory":
		store = repository.NewMemoryStore()
	default:
		log.Fatalf("unknown STORAGE_DRIVER: %q", cfg.StorageDriver)
	}

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		events = publisher
	}

	svc := service.NewReservationService(store, events, timeslot.NewKSTClock(), cfg.Policy())

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
		return c.JSON(200, map[string]string{"status": "ok", "service": "reservation-service"})
	})

	handler.NewReservationHandler(svc).RegisterRoutes(e)
	handler.NewCheckinHandler(svc).RegisterRoutes(e)
	handler.NewAdminHandler(svc, cfg.AdminPassword).RegisterRoutes(e)

	log.Printf("Reservation Service starting on :%s (storage=%s)", cfg.ServerPort, cfg.StorageDriver)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/event-reservation/internal/database"   // MySQL connection pool
	"github.com/iliyamo/event-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/event-reservation/internal/queue"      // RabbitMQ publisher/consumer
	"github.com/iliyamo/event-reservation/internal/repository" // DB repositories
	"github.com/iliyamo/event-reservation/internal/router"     // Route registration
	"github.com/iliyamo/event-reservation/internal/service"    // Booking lifecycle services
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win

	cfg := config.Load()                  // Load environment config
	rlCfg := config.LoadRateLimitConfig() // Rate limiter settings

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName) // Open MySQL pool
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // Redis client; nil when unavailable

	users := repository.NewUserRepo(db)                  // users table
	events := repository.NewEventRepo(db)                // events table + capacity accounting
	reservations := repository.NewReservationRepo(db, events) // reservations + attendees

	codes := service.NewCodeGenerator(reservations)   // reservation code generator
	publisher := queue.NewPublisher()                 // RabbitMQ publisher (best effort)
	resSvc := service.NewReservationService(events, reservations, codes, publisher)
	statsSvc := service.NewStatsService(reservations, rdb, cfg.StatsCacheTTL)

	authH := handler.NewAuthHandler(cfg, users)
	eventH := handler.NewEventHandler(events)
	resH := handler.NewReservationHandler(resSvc)
	orgH := handler.NewOrganizerHandler(resSvc, statsSvc)

	queue.StartReservationLog() // consume lifecycle events into logs/

	e := echo.New()
	router.RegisterRoutes(e)                                          // health + metrics
	router.RegisterAuth(e, authH, cfg.JWTSecret)                      // register/login/me
	router.RegisterEvents(e, eventH, cfg.JWTSecret)                   // browse + organizer event management
	router.RegisterReservations(e, resH, orgH, cfg.JWTSecret, rlCfg, rdb) // booking lifecycle

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-ticketing/internal/artifact"
	"github.com/iliyamo/event-ticketing/internal/booking"
	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, database.Pool{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	// Redis is optional: without it the limiter and the availability
	// cache are disabled and everything still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and availability cache disabled")
	}

	// The ticket codec refuses to start unkeyed in prod; everywhere else
	// the documented development fallback key applies.
	codec, err := ticket.NewCodec(cfg.TicketSecret, !cfg.IsProd())
	if err != nil {
		log.Fatalf("ticket codec: %v", err)
	}

	var store artifact.Store
	if cfg.ArtifactBaseURL != "" {
		store = artifact.NewHTTPStore(cfg.ArtifactBaseURL, cfg.ArtifactPublicURL)
	} else {
		log.Println("no ARTIFACT_BASE_URL configured; ticket images kept in memory")
		store = artifact.NewMemoryStore()
	}

	eventRepo := repository.NewEventRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	userRepo := repository.NewUserRepo(db)

	engine := booking.NewEngine(eventRepo, reservationRepo, rdb)
	issuer := ticket.NewIssuer(codec, store, reservationRepo, eventRepo, userRepo)

	reservations := handler.NewReservationHandler(engine, issuer, reservationRepo, eventRepo)
	events := handler.NewEventHandler(eventRepo, rdb, config.LoadAvailabilityCacheConfig())
	tickets := handler.NewTicketHandler(codec)

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, events, tickets)
	router.RegisterReservations(e, reservations, cfg.JWTSecret, limiter)

	// Consume confirmed-reservation events into the booking audit log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinematrix/cinematrix/internal/config"
	"github.com/cinematrix/cinematrix/internal/database"
	"github.com/cinematrix/cinematrix/internal/handler"
	"github.com/cinematrix/cinematrix/internal/middleware"
	"github.com/cinematrix/cinematrix/internal/queue"
	"github.com/cinematrix/cinematrix/internal/repository"
	"github.com/cinematrix/cinematrix/internal/router"
	"github.com/cinematrix/cinematrix/internal/service"
)

func main() {
	// .env is optional; in deployed environments variables come from
	// the process environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; response cache and rate limiting disabled")
	}

	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	movieRepo := repository.NewMovieRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	catalog := service.NewCatalogService(movieRepo, showtimeRepo, reservationRepo)
	schedule := service.NewScheduleService(movieRepo, showtimeRepo, reservationRepo)
	reservations := service.NewReservationService(db, showtimeRepo, reservationRepo)

	validate := validator.New()

	e := echo.New()
	router.RegisterRoutes(e, router.Handlers{
		Movies:       handler.NewMovieHandler(catalog, validate),
		Showtimes:    handler.NewShowtimeHandler(schedule, validate),
		Reservations: handler.NewReservationHandler(reservations),
		Identity:     middleware.Identity(cfg.JWTSecret),
		Cache:        middleware.ResponseCache(config.LoadCacheConfig(), rdb),
		RateLimit:    middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

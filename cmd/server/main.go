package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/fasalmitra/equipment-rental/internal/config"
	"github.com/fasalmitra/equipment-rental/internal/database"
	"github.com/fasalmitra/equipment-rental/internal/handler"
	"github.com/fasalmitra/equipment-rental/internal/middleware"
	"github.com/fasalmitra/equipment-rental/internal/queue"
	"github.com/fasalmitra/equipment-rental/internal/repository"
	"github.com/fasalmitra/equipment-rental/internal/router"
)

func main() {
	// Load a local .env when present; in containers the variables come
	// from the environment and this is a no-op.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: when unreachable the cache middleware becomes a
	// pass-through and the rate limiter fails open.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	bookings := repository.NewBookingRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	equipmentH := handler.NewEquipmentHandler(equipment)
	bookingH := handler.NewBookingHandler(bookings)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterEquipment(e, equipmentH, cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)

	// The consumer keeps its own connection and reconnects with backoff,
	// so a broker outage never takes the API down with it.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/access"
	"github.com/shelterops/shelter-occupancy-backend/internal/config"
	"github.com/shelterops/shelter-occupancy-backend/internal/database"
	"github.com/shelterops/shelter-occupancy-backend/internal/handler"
	"github.com/shelterops/shelter-occupancy-backend/internal/middleware"
	"github.com/shelterops/shelter-occupancy-backend/internal/placement"
	"github.com/shelterops/shelter-occupancy-backend/internal/queue"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
	"github.com/shelterops/shelter-occupancy-backend/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: rate limiting and response caching degrade to
	// no-ops when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	admins := repository.NewAdminRepo(db)
	tokens := repository.NewTokenRepo(db)
	shelters := repository.NewShelterRepo(db)
	rooms := repository.NewRoomRepo(db)
	families := repository.NewFamilyRepo(db)
	residents := repository.NewResidentRepo(db)
	machines := repository.NewMachineRepo(db)
	alarms := repository.NewAlarmRepo(db)

	engine := placement.NewEngine(db, families, rooms, residents, shelters)
	evaluator := access.NewEvaluator(residents, rooms, families)

	e := echo.New()
	e.HideBanner = true

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.Use(limiter)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, admins, tokens), cfg.JWTSecret)
	router.RegisterAdmin(e, router.AdminHandlers{
		Shelters:  handler.NewShelterHandler(cfg, shelters),
		Rooms:     handler.NewRoomHandler(rooms, families, machines, alarms, residents, shelters),
		Families:  handler.NewFamilyHandler(db, families, residents, rooms, shelters),
		Residents: handler.NewResidentHandler(engine, residents, families),
		Machines:  handler.NewMachineHandler(machines, rooms),
		Alarms:    handler.NewAlarmHandler(cfg, alarms, rooms, shelters),
	}, cfg.JWTSecret, cache)
	router.RegisterAccess(e, handler.NewAccessHandler(evaluator), cfg.JWTSecret)

	// Background consumer writing alarm events to logs/alarm.log. It
	// reconnects on its own; a broker outage never stops the server.
	go func() {
		if err := queue.StartAlarmConsumer(); err != nil {
			log.Printf("alarm consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/database"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/router"
	"github.com/iliyamo/room-reservation/internal/service"
	"github.com/iliyamo/room-reservation/internal/web"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	users := repository.NewUserRepo(db)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if _, err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.BcryptCost); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		log.Printf("admin %q ready", cfg.AdminUsername)
	}

	// Redis is optional; nil switches the limiter and cache to memory.
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	qcfg := config.LoadQueueConfig()
	var events service.EventPublisher = service.NopPublisher{}
	if qcfg.Enabled {
		events = service.NewAMQPPublisher(qcfg.URL, qcfg.Queue)
		if qcfg.ConsumerEnabled {
			consumer := queue.NewConsumer(qcfg.URL, qcfg.Queue, qcfg.LogDir)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("reservation-consumer: %v", err)
				}
			}()
		}
	}

	reservations := service.NewReservationService(db, events, cache, cfg.PageSize)
	rooms := service.NewRoomService(reservations.Rooms, cache)
	buildings := service.NewBuildingService(repository.NewBuildingRepo(db), cache)
	auth := handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db))

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorPages(e.DefaultHTTPErrorHandler)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, db)
	router.RegisterDocs(e)

	api := e.Group(router.APIPrefix,
		echomw.CORS(),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)
	router.RegisterAuth(api, auth, cfg.JWTSecret)
	router.RegisterAPI(api, router.API{
		Reservations: handler.NewReservationHandler(reservations),
		Rooms:        handler.NewRoomHandler(rooms, reservations),
		Buildings:    handler.NewBuildingHandler(buildings),
		Users:        handler.NewUserHandler(service.NewUserService(users)),
	}, cfg.JWTSecret, cache.Middleware())
	router.RegisterWeb(e, handler.NewWebHandler(reservations, rooms, auth), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

package main // Entry point package

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/archive"
    "github.com/loftalgerie/loft-api/internal/config"
    "github.com/loftalgerie/loft-api/internal/database"
    "github.com/loftalgerie/loft-api/internal/handler"
    "github.com/loftalgerie/loft-api/internal/middleware"
    "github.com/loftalgerie/loft-api/internal/queue"
    "github.com/loftalgerie/loft-api/internal/repository"
    "github.com/loftalgerie/loft-api/internal/router"
)

func main() {
    // Load .env when present; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs the response cache and the rate limiter; nil disables both.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; cache and rate limiting disabled")
    }

    // Repositories
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    partners := repository.NewPartnerRepo(db)
    lofts := repository.NewLoftRepo(db)
    reservations := repository.NewReservationRepo(db)
    audit := repository.NewAuditRepo(db)
    policies := repository.NewArchivePolicyRepo(db)
    currency := repository.NewCurrencyRepo(db)

    // Handlers
    authH := handler.NewAuthHandler(cfg, users, tokens)
    partnerH := handler.NewPartnerHandler(partners, lofts, reservations, audit)
    reservationH := handler.NewReservationHandler(lofts, reservations, audit)
    adminH := handler.NewAdminHandler(partners, audit, policies, currency, tokens)
    publicH := handler.NewPublicHandler(lofts, currency)

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterPublic(e, publicH, reservationH,
        middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
        middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    router.RegisterClient(e, reservationH, cfg.JWTSecret)
    router.RegisterPartner(e, partnerH, partners, cfg.JWTSecret)
    router.RegisterAdmin(e, adminH, cfg.JWTSecret)

    // Background consumer: logs confirmed reservations from the broker.
    go func() {
        if err := queue.StartReservationConsumer(); err != nil {
            log.Printf("reservation consumer stopped: %v", err)
        }
    }()

    // Background retention scheduler.
    sched := archive.NewScheduler(audit, policies, time.Hour, 1000)
    go sched.Run(context.Background())

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lending-ledger/internal/adapter/command"
	httpadp "lending-ledger/internal/adapter/http"
	idem "lending-ledger/internal/adapter/middleware"
	"lending-ledger/internal/bootstrap"
	"lending-ledger/internal/config"
	"lending-ledger/internal/infrastructure/cache"
	"lending-ledger/pkg/id"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := bootstrap.OpenStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	uc := store.Ledger()
	router := command.NewRouter(uc)

	checks := []httpadp.Check{{Name: "store", Probe: store.Ping}}
	var idempotency echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
		idempotency = idem.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
		checks = append(checks, httpadp.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	} else {
		log.Println("REDIS_ADDR not set, idempotency disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.NewID32}))
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Register(e,
		httpadp.NewHandler(checks...),
		httpadp.NewLoanHandler(uc),
		httpadp.NewCommandHandler(router),
		idempotency,
	)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main // Entry point package

import (
	"context"
	"log" // Logging library

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/account-dashboard/internal/config"
	"github.com/iliyamo/account-dashboard/internal/database"
	"github.com/iliyamo/account-dashboard/internal/handler"
	"github.com/iliyamo/account-dashboard/internal/queue"
	"github.com/iliyamo/account-dashboard/internal/repository"
	"github.com/iliyamo/account-dashboard/internal/router"
	"github.com/iliyamo/account-dashboard/internal/service"
	"github.com/iliyamo/account-dashboard/internal/storage"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	blobs, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Redis backs rate limiting and the catalog response cache; a nil
	// client just disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and caching disabled")
	}

	accounts := service.NewAccountService(cfg,
		repository.NewCredentialRepo(db, cfg.BcryptCost),
		repository.NewUserRepo(db),
		repository.NewActivityRepo(db),
		repository.NewDeletionRepo(db),
		repository.NewActionCodeRepo(db),
		repository.NewTokenRepo(db),
		blobs)

	authH := handler.NewAuthHandler(cfg, accounts, accounts.Tokens)
	h := router.Handlers{
		Auth:    authH,
		OAuth:   handler.NewOAuthHandler(cfg, accounts, authH),
		Account: handler.NewAccountHandler(accounts),
		Admin:   handler.NewAdminHandler(accounts),
		Product: handler.NewProductHandler(repository.NewProductRepo(db)),
	}

	// Background consumer mirrors purges into logs/deletions.log.
	go func() {
		if err := queue.StartPurgeConsumer(); err != nil {
			log.Printf("purge consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg, h, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/config"
	"github.com/xpch/platform/shared/database"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/logger"
	"github.com/xpch/platform/shared/middleware"
	redisClient "github.com/xpch/platform/shared/redis"
	"github.com/xpch/platform/shared/server"
	storecmd "github.com/xpch/platform/storefront-service/internal/command"
	"github.com/xpch/platform/storefront-service/internal/handler"
	storeqry "github.com/xpch/platform/storefront-service/internal/query"
	"github.com/xpch/platform/storefront-service/internal/repository"
	"github.com/xpch/platform/storefront-service/migrations"
)

const serviceName = "storefront-service"

func main() {
	cfg, err := config.Load(serviceName, map[string]any{"port": "8084"})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(serviceName, cfg.LogLevel, cfg.IsProduction())
	middleware.MustInitJWTSecret(cfg.JWTSecret, cfg.JWTExpire)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db, migrations.FS, serviceName); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redis, err := redisClient.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	shopperRepo := repository.NewShopperRepository(db)
	readRepo := repository.NewReadRepository(shopperRepo, redis.Client, cfg.Env, cfg.CacheTTL)
	commandSvc := storecmd.NewShopperCommandService(shopperRepo, readRepo)
	querySvc := storeqry.NewShopperQueryService(readRepo)

	router := server.NewRouter(serviceName)
	handler.Routes(router, handler.NewShopperHandler(querySvc))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sub := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    events.StorefrontGroup,
			Consumer: cfg.ConsumerName,
			Subject:  events.UserCreated,
			Handler:  commandSvc.HandleUserCreated,
			AckWait:  cfg.AckWait,
		})
		if err := sub.Start(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("user.created subscriber stopped")
		}
	}()

	if err := server.Run(ctx, cfg.Port, router); err != nil {
		log.WithError(err).Error("server exited")
	}

	stop()
	wg.Wait()
	log.Info("storefront service stopped")
}

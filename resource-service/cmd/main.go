package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	rescmd "github.com/xpch/platform/resource-service/internal/command"
	"github.com/xpch/platform/resource-service/internal/handler"
	resqry "github.com/xpch/platform/resource-service/internal/query"
	"github.com/xpch/platform/resource-service/internal/repository"
	"github.com/xpch/platform/resource-service/migrations"
	"github.com/xpch/platform/shared/config"
	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/database"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/jobs"
	"github.com/xpch/platform/shared/logger"
	"github.com/xpch/platform/shared/middleware"
	redisClient "github.com/xpch/platform/shared/redis"
	"github.com/xpch/platform/shared/server"
)

const serviceName = "resource-service"

func main() {
	cfg, err := config.Load(serviceName, map[string]any{"port": "8082"})
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

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client, 0)

	countryRepo := countries.NewRepository(db)
	bankRepo := repository.NewBankRepository(db)
	readRepo := repository.NewReadRepository(countryRepo, bankRepo, redis.Client, cfg.Env, cfg.CacheTTL)

	commandSvc := rescmd.NewResourceCommandService(bankRepo, countryRepo, readRepo, publisher)
	querySvc := resqry.NewResourceQueryService(readRepo)

	if err := commandSvc.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	router := server.NewRouter(serviceName)
	handler.Routes(router, handler.NewResourceHandler(commandSvc, querySvc))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sub := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    events.ResourceGroup,
			Consumer: cfg.ConsumerName,
			Subject:  events.UserCreated,
			Handler:  commandSvc.HandleUserCreated,
			AckWait:  cfg.AckWait,
		})
		if err := sub.Start(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("user.created subscriber stopped")
		}
	}()

	scheduler := jobs.NewScheduler()
	if _, err := scheduler.Schedule("warm-cache", cfg.CacheWarmCron, commandSvc.WarmCache); err != nil {
		log.Fatalf("Failed to schedule job: %v", err)
	}
	scheduler.Start()

	if err := server.Run(ctx, cfg.Port, router); err != nil {
		log.WithError(err).Error("server exited")
	}

	stop()
	scheduler.Stop(context.Background())
	wg.Wait()
	log.Info("resource service stopped")
}

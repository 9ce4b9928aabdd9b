package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	usercmd "github.com/xpch/platform/identity-service/internal/command"
	"github.com/xpch/platform/identity-service/internal/handler"
	userqry "github.com/xpch/platform/identity-service/internal/query"
	"github.com/xpch/platform/identity-service/internal/repository"
	"github.com/xpch/platform/identity-service/migrations"
	"github.com/xpch/platform/shared/config"
	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/database"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/jobs"
	"github.com/xpch/platform/shared/logger"
	"github.com/xpch/platform/shared/mail"
	"github.com/xpch/platform/shared/middleware"
	redisClient "github.com/xpch/platform/shared/redis"
	"github.com/xpch/platform/shared/server"
)

const serviceName = "identity-service"

func main() {
	cfg, err := config.Load(serviceName, map[string]any{"port": "8081"})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(serviceName, cfg.LogLevel, cfg.IsProduction())
	middleware.MustInitJWTSecret(cfg.JWTSecret, cfg.JWTExpire)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres (write store)
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db, migrations.FS, serviceName); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis (read cache + event streams)
	redis, err := redisClient.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client, 0)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	countryRepo := countries.NewRepository(db)
	readRepo := repository.NewUserReadRepository(userRepo, countryRepo, redis.Client, cfg.Env, cfg.CacheTTL)

	commandSvc := usercmd.NewUserCommandService(userRepo, roleRepo, countryRepo, readRepo, publisher, mail.NewLogMailer(cfg.MailFrom))
	querySvc := userqry.NewUserQueryService(readRepo)

	if err := commandSvc.Bootstrap(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		log.Fatalf("Failed to seed superadmin: %v", err)
	}

	router := server.NewRouter(serviceName)
	handler.Routes(router,
		handler.NewAuthHandler(commandSvc, querySvc, cfg.IsProduction()),
		handler.NewUserHandler(commandSvc, querySvc),
	)

	// Event listeners
	var wg sync.WaitGroup
	listen := func(subject string, h events.Handler) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := events.NewSubscriber(redis.Client, events.SubscriberConfig{
				Group:    events.IdentityGroup,
				Consumer: cfg.ConsumerName,
				Subject:  subject,
				Handler:  h,
				AckWait:  cfg.AckWait,
			})
			if err := sub.Start(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).WithField("subject", subject).Error("subscriber stopped")
			}
		}()
	}
	listen(events.CountryFound, commandSvc.HandleCountryFound)
	listen(events.LocationSaved, commandSvc.HandleLocationSaved)

	// Jobs
	scheduler := jobs.NewScheduler()
	if _, err := scheduler.Schedule("unlock-accounts", cfg.UnlockCron, commandSvc.UnlockAccounts); err != nil {
		log.Fatalf("Failed to schedule job: %v", err)
	}
	scheduler.Start()

	if err := server.Run(ctx, cfg.Port, router); err != nil {
		log.WithError(err).Error("server exited")
	}

	stop()
	scheduler.Stop(context.Background())
	wg.Wait()
	log.Info("identity service stopped")
}

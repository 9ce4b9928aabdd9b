package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

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
	sptcmd "github.com/xpch/platform/sports-service/internal/command"
	"github.com/xpch/platform/sports-service/internal/handler"
	sptqry "github.com/xpch/platform/sports-service/internal/query"
	"github.com/xpch/platform/sports-service/internal/repository"
	"github.com/xpch/platform/sports-service/migrations"
)

const serviceName = "sports-service"

func main() {
	cfg, err := config.Load(serviceName, map[string]any{"port": "8083"})
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

	scheduler := jobs.NewScheduler()

	// --- CQRS wiring ---
	countryRepo := countries.NewRepository(db)
	leagueRepo := repository.NewLeagueRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	fixtureRepo := repository.NewFixtureRepository(db)
	readRepo := repository.NewReadRepository(leagueRepo, teamRepo, matchRepo, fixtureRepo, countryRepo,
		redis.Client, cfg.Env, cfg.CacheTTL)

	commandSvc := sptcmd.NewSportsCommandService(leagueRepo, teamRepo, matchRepo, fixtureRepo, countryRepo, readRepo,
		scheduler, mail.NewLogMailer(cfg.MailFrom))
	querySvc := sptqry.NewSportsQueryService(readRepo)

	router := server.NewRouter(serviceName)
	handler.Routes(router, handler.NewSportsHandler(commandSvc, querySvc))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sub := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    events.SportsGroup,
			Consumer: cfg.ConsumerName,
			Subject:  events.CountryFound,
			Handler:  commandSvc.HandleCountryFound,
			AckWait:  cfg.AckWait,
		})
		if err := sub.Start(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("country.found subscriber stopped")
		}
	}()

	scheduler.Start()

	if err := server.Run(ctx, cfg.Port, router); err != nil {
		log.WithError(err).Error("server exited")
	}

	stop()
	if n := commandSvc.PendingReminders(); n > 0 {
		log.WithField("pending", n).Warn("match reminders dropped at shutdown")
	}
	scheduler.Stop(context.Background())
	wg.Wait()
	log.Info("sports service stopped")
}

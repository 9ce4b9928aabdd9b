package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/api-gateway/internal/gateway"
	"github.com/xpch/platform/shared/config"
	"github.com/xpch/platform/shared/logger"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/server"
)

const serviceName = "api-gateway"

func main() {
	cfg, err := config.Load(serviceName, nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(serviceName, cfg.LogLevel, cfg.IsProduction())
	middleware.MustInitJWTSecret(cfg.JWTSecret, cfg.JWTExpire)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewRouter(serviceName)
	gateway.Routes(router, gateway.Upstreams{
		Identity:   cfg.IdentityServiceURL,
		Resource:   cfg.ResourceServiceURL,
		Sports:     cfg.SportsServiceURL,
		Storefront: cfg.StorefrontServiceURL,
	}, nil)

	log.WithFields(log.Fields{
		"identity":   cfg.IdentityServiceURL,
		"resource":   cfg.ResourceServiceURL,
		"sports":     cfg.SportsServiceURL,
		"storefront": cfg.StorefrontServiceURL,
	}).Info("gateway upstreams")

	if err := server.Run(ctx, cfg.Port, router); err != nil {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("api gateway stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/linkhub-app/linkhub/config"
	appgeo "github.com/linkhub-app/linkhub/internal/app/geo"
	appmodel "github.com/linkhub-app/linkhub/internal/app/model"
	apprepository "github.com/linkhub-app/linkhub/internal/app/repository"
	appserver "github.com/linkhub-app/linkhub/internal/app/server"
	appservice "github.com/linkhub-app/linkhub/internal/app/service"
	"github.com/linkhub-app/linkhub/internal/infra/logger"
	infraNATS "github.com/linkhub-app/linkhub/internal/infra/nats"
	infraPostgres "github.com/linkhub-app/linkhub/internal/infra/postgres"
	infraPrometheus "github.com/linkhub-app/linkhub/internal/infra/prometheus"
	infraRedis "github.com/linkhub-app/linkhub/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("server_addr", cfg.Server.Addr),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.String("geoip_db", cfg.GeoIP.DBPath),
		zap.Int("analytics_window_days", cfg.Analytics.DefaultWindowDays),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.Account{},
		&appmodel.Link{},
		&appmodel.ClickEvent{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	classifier, err := appgeo.New(cfg.GeoIP.DBPath)
	if err != nil {
		log.Fatal("Failed to open GeoIP database", zap.Error(err))
	}
	if cfg.GeoIP.DBPath == "" {
		log.Warn("No GeoIP database configured; country classification degrades to Unknown")
	}

	accountRepo := apprepository.NewAccountRepository(gormDB)
	eventRepo := apprepository.NewClickEventRepository(pool)

	resolver := appservice.NewLinkResolver(accountRepo, redisClient, log)
	if err := resolver.Warm(ctx); err != nil {
		log.Fatal("Failed to warm link resolver", zap.Error(err))
	}

	publisher := appservice.NewClickPublisher(js)
	recorder := appservice.NewClickRecorder(accountRepo, classifier, publisher, log)
	analytics := appservice.NewAnalyticsService(accountRepo, eventRepo, cfg.Analytics.DefaultWindowDays)
	links := appservice.NewLinkService(accountRepo, resolver)

	consumer := appservice.NewClickConsumer(js, log, redisClient)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start click consumer", zap.Error(err))
	}

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		Redis:     redisClient,
		Resolver:  resolver,
		Recorder:  recorder,
		Analytics: analytics,
		Links:     links,
	})

	if err := server.Listen(cfg.Server.Addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}

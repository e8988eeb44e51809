package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/app"
	"github.com/iliyamo/fridge-share/internal/config"
	"github.com/iliyamo/fridge-share/internal/handler"
	"github.com/iliyamo/fridge-share/internal/logging"
	"github.com/iliyamo/fridge-share/internal/mail"
	"github.com/iliyamo/fridge-share/internal/metrics"
	"github.com/iliyamo/fridge-share/internal/middleware"
	"github.com/iliyamo/fridge-share/internal/queue"
	"github.com/iliyamo/fridge-share/internal/router"
	"github.com/iliyamo/fridge-share/internal/service"
)

// redisPinger adapts the redis client to handler.Pinger.
type redisPinger struct{ c *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.c.Ping(ctx).Err() }

func main() {
	_ = godotenv.Load()

	log, err := logging.New(logging.ConfigFromEnv())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("open stores", zap.Error(err))
	}
	defer func() { _ = backend.Close() }()

	health := map[string]handler.Pinger{}
	if backend.DB != nil {
		health["mysql"] = backend.DB
	}

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable; rate limiting disabled", zap.Error(err))
	} else {
		defer func() { _ = rdb.Close() }()
		health["redis"] = redisPinger{rdb}
	}

	mailCfg := config.LoadMailConfig()
	sender, err := mail.NewSender(mailCfg, log)
	if err != nil {
		log.Fatal("mail transport", zap.Error(err))
	}

	opts := service.Options{Logger: log, Metrics: metrics.New(prometheus.DefaultRegisterer)}
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL, log)
		defer func() { _ = pub.Close() }()
		opts.Events = pub

		eventLog, err := logging.NewEventLog(cfg.EventLogDir, 30*24*time.Hour)
		if err != nil {
			log.Fatal("event log", zap.Error(err))
		}
		defer func() { _ = eventLog.Close() }()
		go func() {
			if err := queue.NewConsumer(cfg.AMQPURL, eventLog, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	svc := service.New(backend.Stores, sender, mail.LinksFromConfig(mailCfg), app.ServiceConfig(cfg), opts)
	go service.NewSweeper(svc.Admin, cfg.SweepInterval).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLog(log))
	e.Use(echomw.CORS())

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(svc, cfg.JWTSecret, log),
		Fridges:       handler.NewFridgeHandler(svc, log),
		Invites:       handler.NewInviteHandler(svc, log),
		Items:         handler.NewItemHandler(svc, log),
		Notifications: handler.NewNotificationHandler(svc, log),
	}
	e.GET("/healthz", handler.Health(health))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	router.RegisterRoutes(e, h, limit)
	router.RegisterProtected(e, h, cfg.JWTSecret, limit)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", zap.Error(err))
	}
}

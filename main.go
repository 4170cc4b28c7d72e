package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mandi-backend/config"
	"mandi-backend/controllers"
	"mandi-backend/database"
	"mandi-backend/middlewares"
	"mandi-backend/notify"
	"mandi-backend/routes"
	"mandi-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel, os.Stdout)
	middlewares.ErrorLogger = logger
	middlewares.ConfigureAuth(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		config.LogError(logger, "main", "main", "connect database", nil, err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		config.LogError(logger, "main", "main", "migrate", nil, err)
		os.Exit(1)
	}
	if created, err := database.EnsureAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		config.LogError(logger, "main", "main", "bootstrap admin", cfg.AdminUsername, err)
	} else if created {
		logger.WithField("username", cfg.AdminUsername).Info("bootstrap admin created")
	}

	// ---- Locks and notifications: redis when configured, in-process otherwise
	hub := notify.NewHub()
	opts := services.Options{Logger: logger, Timeout: cfg.StoreTimeout}
	rdb, err := config.ConnectRedis(ctx, cfg.RedisAddress, logger)
	if err != nil {
		config.LogError(logger, "main", "main", "connect redis", cfg.RedisAddress, err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		broadcaster := notify.NewRedisBroadcaster(rdb, hub, "", logger)
		go func() {
			if err := broadcaster.Run(ctx); err != nil {
				config.LogError(logger, "notify", "Run", "redis subscription", nil, err)
			}
		}()
		opts.Locker = services.NewRedisLocker(rdb, cfg.LockTTL)
		opts.Notifier = broadcaster
	} else {
		opts.Locker = services.NewLocalLocker()
		opts.Notifier = hub
	}
	engine := services.NewEngine(db, opts)

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes,
	})
	app.Use(recover.New())
	app.Use(middlewares.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		// The event stream is long-lived and would count against the window forever.
		Next: func(c *fiber.Ctx) bool { return c.Path() == "/api/events" },
	}))

	routes.Register(app, &controllers.Handler{
		DB:     db,
		Engine: engine,
		Hub:    hub,
		Log:    logger,
		Cfg:    cfg,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		hub.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			config.LogError(logger, "main", "main", "shutdown", nil, err)
		}
	}()

	logger.WithField("port", cfg.Port).Info("API server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		config.LogError(logger, "main", "main", "listen", cfg.Port, err)
		os.Exit(1)
	}
}

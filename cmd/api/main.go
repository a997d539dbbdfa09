package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aitorfdez/flyover/internal/adapters/directions"
	"github.com/aitorfdez/flyover/internal/adapters/http"
	natsadapter "github.com/aitorfdez/flyover/internal/adapters/nats"
	"github.com/aitorfdez/flyover/internal/adapters/postgres"
	"github.com/aitorfdez/flyover/internal/adapters/valkey"
	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/core/usecases"
	"github.com/aitorfdez/flyover/internal/pkg/config"
	"github.com/aitorfdez/flyover/internal/pkg/logging"
	"github.com/aitorfdez/flyover/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("flyover-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, routes resolve uncached", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, engine events are dropped", "error", err)
		pub = nil
	} else {
		defer pub.Close()
		events = pub
	}

	// Directions provider + shared resolver
	provider := directions.NewMapboxProvider(
		cfg.Directions.BaseURL,
		cfg.Directions.Token,
		time.Duration(cfg.Directions.Timeout)*time.Second,
	)
	resolver := usecases.NewRouteResolver(provider, cacheSvc, cfg.Valkey.RouteCacheTTL, slog.Default())

	deps := &http.Dependencies{
		Projects:      postgres.NewProjectRepo(db),
		Resolver:      resolver,
		Events:        events,
		Tunables:      tunablesFrom(cfg.Cinematic),
		FrameInterval: cfg.Cinematic.FrameInterval(),
		Profile:       domain.TravelProfile(cfg.Directions.Profile),
		DB:            db,
		Cache:         cache,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Flyover API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight sessions up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// tunablesFrom maps the cinematic config section onto engine tunables.
func tunablesFrom(c config.CinematicConfig) usecases.Tunables {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return usecases.Tunables{
		DrawDuration:        ms(c.DrawDurationMs),
		ApproachZoom:        c.ApproachZoom,
		ApproachPitch:       c.ApproachPitch,
		ApproachDuration:    ms(c.ApproachDurationMs),
		HoldDuration:        ms(c.HoldDurationMs),
		RevealPitch:         c.RevealPitch,
		RevealBearingFactor: c.RevealBearingFactor,
		RevealDuration:      ms(c.RevealDurationMs),
		TiltedPitch:         c.TiltedPitch,
		TiltedBearing:       c.TiltedBearing,
		ToggleDuration:      ms(c.ToggleDurationMs),
		FitPadding:          c.FitPadding,
		IntroDuration:       ms(c.IntroDurationMs),
		IntroZoom:           c.IntroZoom,
	}
}

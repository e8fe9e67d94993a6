package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-handicraft-ops/internal/handler"
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/middleware"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/internal/ws"
	"go-handicraft-ops/pkg/config"
	"go-handicraft-ops/pkg/database"
	"go-handicraft-ops/pkg/jwt"
	"go-handicraft-ops/pkg/logger"
	"go-handicraft-ops/pkg/metrics"
	"go-handicraft-ops/pkg/migrate"
	pkgredis "go-handicraft-ops/pkg/redis"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, using process environment")
	}
	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.IsDev(),
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	// 2. Setup Database
	db, err := database.ConnectDB(ctx, cfg.DB, logg, cfg.App.IsDev())
	requireResource(ctx, logg, "database", err)

	if cfg.App.AutoMigrate {
		sqlDB, err := db.DB()
		requireResource(ctx, logg, "sql database", err)
		requireResource(ctx, logg, "migrations", migrate.Up(ctx, sqlDB, logg))
	}

	// 3. Optional Redis for idempotent writes
	var (
		redisClient *pkgredis.Client
		idemStore   pkgredis.IdempotencyStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "redis unavailable, idempotency replay disabled", err)
		} else {
			idemStore = redisClient
		}
	}

	// 4. Metrics + WebSocket Hub
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflow := metrics.NewWorkflow(registry)

	wsHub := ws.NewHub(logg)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	materialRepo := repository.NewRawMaterialRepo(db)
	inventoryRepo := repository.NewUserInventoryRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	vendorRepo := repository.NewVendorRepo(db)
	creditNoteRepo := repository.NewCreditNoteRepo(db)

	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, logg)
	authService := service.NewAuthService(userRepo, jwt.NewManager(cfg.JWT), wsHub)
	transferService := service.NewTransferService(db, transferRepo, materialRepo, inventoryRepo, userRepo, wsHub, workflow, logg)
	creditNoteService := service.NewCreditNoteService(creditNoteRepo, vendorRepo, wsHub, workflow, logg)
	materialService := service.NewRawMaterialService(materialRepo, inventoryRepo, wsHub)
	vendorService := service.NewVendorService(vendorRepo)
	dashService := service.NewDashboardService(repository.NewDashboardRepo(db), cfg.Inventory.LowStockThreshold)

	if cfg.App.SeedDefaults {
		seed := service.AdminSeed{Email: cfg.App.AdminEmail, Password: cfg.App.AdminPassword, FullName: "Master Administrator"}
		if err := userService.SeedDefaults(ctx, seed); err != nil {
			logg.Error(ctx, "seeding default access control failed", err)
		}
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: response.FiberErrorHandler(logg),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logg))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.App.CORSOrigins}))

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "error": "database unreachable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "wsClients": wsHub.ClientCount()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 7. Routes
	handler.RegisterRoutes(
		app.Group("/api/v1"),
		middleware.RequireAuth(authService, logg),
		middleware.Idempotency(idemStore, cfg.Redis.IdempotencyTTL, logg),
		handler.Handlers{
			Auth:        handler.NewAuthHandler(authService, logg),
			Transfer:    handler.NewTransferHandler(transferService, logg),
			CreditNote:  handler.NewCreditNoteHandler(creditNoteService, logg),
			RawMaterial: handler.NewRawMaterialHandler(materialService, logg),
			Vendor:      handler.NewVendorHandler(vendorService, logg),
			User:        handler.NewUserHandler(userService, logg),
			Dashboard:   handler.NewDashboardHandler(dashService, logg),
		},
	)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Serve))

	// 8. Graceful Shutdown
	listenErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "http server listening")
		listenErr <- app.Listen(":" + cfg.App.Port)
	}()

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			logg.Error(ctx, "http server stopped", err)
		}
	}
	stop()

	logg.Info(context.Background(), "shutting down server")
	shutdownErr := app.ShutdownWithTimeout(shutdownTimeout)
	if redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	}
	shutdownErr = multierr.Append(shutdownErr, database.Close(db))
	if shutdownErr != nil {
		logg.Error(context.Background(), "shutdown incomplete", shutdownErr)
		os.Exit(1)
	}
	logg.Info(context.Background(), "server exited")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", resource), "startup failed", err)
	os.Exit(1)
}

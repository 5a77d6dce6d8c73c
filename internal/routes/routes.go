package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cardvault/cardvault/internal/auth"
	"github.com/cardvault/cardvault/internal/card"
	"github.com/cardvault/cardvault/internal/cardnum"
	"github.com/cardvault/cardvault/internal/config"
	"github.com/cardvault/cardvault/internal/holder"
	"github.com/cardvault/cardvault/internal/middleware"
	"github.com/cardvault/cardvault/internal/notification"
)

// adminRole guards holder administration and the cross-holder card surface.
const adminRole = "ADMIN"

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories fall back to in-memory implementations in dev.
	var holderRepo holder.Repository
	var cardRepo card.Repository
	if d.DB != nil {
		holderRepo = holder.NewPostgresRepository(d.DB)
		cardRepo = card.NewPostgresRepository(d.DB)
	} else {
		holderRepo = holder.NewMemoryRepository()
		cardRepo = card.NewMemoryRepository()
	}

	codec, err := cardnum.NewCodec(d.Cfg.CardEncoderKey)
	if err != nil {
		return err
	}

	holderSvc := holder.NewService(holderRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	cardSvc := card.NewService(cardRepo, holderRepo, codec, cardnum.NewGenerator(), notifier)
	tokenSvc := auth.NewService(d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL)

	authHandler := auth.NewHandler(holderSvc, tokenSvc)
	holderHandler := holder.NewHandler(holderSvc)
	cardHandler := card.NewHandler(cardSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(tokenSvc)
	protected := api.Group("", jwtmw)
	RegisterCardRoutes(protected, cardHandler)

	admin := protected.Group("", middleware.RequireRole(adminRole))
	RegisterHolderRoutes(admin, holderHandler)
	RegisterCardAdminRoutes(admin, cardHandler)

	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/archhub/data"
	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/basetypes"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/database"
	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/handlers"
	"github.com/localnerve/archhub/internal/listing"
	"github.com/localnerve/archhub/internal/logging"
	"github.com/localnerve/archhub/internal/middleware"
	"github.com/redis/go-redis/v9"

	_ "github.com/localnerve/archhub/docs/api" // Swagger docs
)

// @title Architecture Hub API
// @version 1.0.0
// @description Application catalogue with a guided registration form, list exports and an audit trail
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/archhub
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", false).Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogPrettyPrint)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if cfg.SeedFixtures {
		fx, err := database.LoadFixtures()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load fixtures")
		}
		if err := database.Seed(db, fx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to seed database")
		}
	}

	ctx := context.Background()

	lookup, err := basetypes.Load(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load base types")
	}

	meta, err := form.Load(data.FormMetadataJSON)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load form metadata")
	}

	// Draft storage
	var (
		drafts form.DraftStore
		rdb    *redis.Client
	)
	switch cfg.DraftStore {
	case "redis":
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		drafts = form.NewRedisDraftStore(rdb)
	default:
		drafts = form.NewGormDraftStore(db)
	}
	logger.Info().Str("store", cfg.DraftStore).Msg("Form drafts configured")

	store := catalogue.NewStore(db)
	audit := auditlog.NewStore(db)
	creator := form.NewRecordSubmitter(db, store, cfg.CatalogueIDPrefix)
	columns := listing.NewColumns(meta)
	registry := form.NewRegistry(&form.Engine{
		Meta:      meta,
		Options:   lookup,
		Submitter: creator,
		Drafts:    drafts,
	}, 2*time.Hour)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowCredentials: !(len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*"),
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("archhub")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api", middleware.VersionMiddleware())

	handlers.Register(api, cfg, &handlers.Handlers{
		Applications: &handlers.ApplicationHandler{Catalogue: store, Audit: audit, Creator: creator, Columns: columns},
		AuditLogs:    &handlers.AuditLogHandler{Audit: audit},
		BaseTypes:    &handlers.BaseTypeHandler{Lookup: lookup},
		Form:         &handlers.FormHandler{Registry: registry, Columns: columns},
		Health:       &handlers.HealthHandler{Config: cfg, DB: db, Redis: rdb},
	})

	// 404 handler
	app.Use(handlers.NotFound)

	if cfg.AuthEnabled() {
		logger.Info().Str("authorizer_url", cfg.AuthzURL).Msg("Authorizer will be initialized on first authenticated request")
	} else {
		logger.Warn().Msg("AUTHZ_URL not set, writes are attributed to the system actor")
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info().Msg("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	logger.Info().Str("port", cfg.Port).Str("db", cfg.DBType).Msg("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}

	logger.Info().Msg("Server stopped")
}

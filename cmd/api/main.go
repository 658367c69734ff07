package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/Despachos-api/docs"
	"github.com/jhoicas/Despachos-api/internal/application/logistics"
	"github.com/jhoicas/Despachos-api/internal/infrastructure/manifest"
	"github.com/jhoicas/Despachos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Despachos-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Despachos-api/internal/interfaces/http"
	"github.com/jhoicas/Despachos-api/internal/jobs"
	"github.com/jhoicas/Despachos-api/pkg/config"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	docs, err := storage.NewFromConfig(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de documentos")
	}
	if cfg.Storage.Dir == "" {
		log.Warn().Msg("STORAGE_DIR vacío: documentos en memoria, se pierden al reiniciar")
	}

	palletRepo := postgres.NewPalletRepository(pool)
	loadRepo := postgres.NewLoadRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	releaseRepo := postgres.NewReleaseRequestRepository(pool)
	shippedRepo := postgres.NewShippedPalletRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registryUC := logistics.NewRegistryUseCase(txRunner, palletRepo, log)
	assemblyUC := logistics.NewAssemblyUseCase(txRunner, loadRepo, membershipRepo, releaseRepo, log)
	workflowUC := logistics.NewWorkflowUseCase(txRunner, loadRepo, membershipRepo, releaseRepo, docs, log)
	dispositionUC := logistics.NewDispositionUseCase(txRunner, membershipRepo, docs, cfg.Shipping.Destinations, log)
	manifestUC := logistics.NewManifestUseCase(loadRepo, membershipRepo, shippedRepo, orderRepo, log,
		manifest.NewCSVRenderer(), manifest.NewXMLRenderer(), manifest.NewPDFRenderer())

	jobManager := jobs.NewJobManager(cfg.Jobs, dispositionUC, log)
	if err := jobManager.StartAll(); err != nil {
		log.Fatal().Err(err).Msg("iniciar jobs")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Despachos API",
	}))
	// Misma especificación, embebida en el binario (no depende del directorio de trabajo).
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return c.SendStatus(fiber.StatusNotFound)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Registry:    registryUC,
		Assembly:    assemblyUC,
		Workflow:    workflowUC,
		Disposition: dispositionUC,
		Manifest:    manifestUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	jobManager.StopAll()

	log.Info().Msg("aplicación detenida")
}

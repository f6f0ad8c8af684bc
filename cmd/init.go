package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giftflow/certgen-backend/internal/application"
	"github.com/giftflow/certgen-backend/internal/application/commands"
	"github.com/giftflow/certgen-backend/internal/application/query"
	"github.com/giftflow/certgen-backend/internal/infra/config"
	"github.com/giftflow/certgen-backend/internal/infra/db/repo"
	"github.com/giftflow/certgen-backend/internal/infra/mail"
	"github.com/giftflow/certgen-backend/internal/infra/sheets"
	"github.com/giftflow/certgen-backend/internal/presentation/rest"
	"github.com/giftflow/certgen-backend/internal/presentation/scheduler"
	"github.com/giftflow/certgen-backend/internal/render"
	"github.com/giftflow/certgen-backend/migrations"
	"github.com/giftflow/certgen-backend/pkg/db"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
)

func Init() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment")
	}

	appConfig := config.NewAppConfig()
	dbConfig := db.NewConfig()

	pool, err := db.NewPool(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	if err := runMigrations(dbConfig.GetDSN()); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	templates := repo.NewTemplateRepo(pool)
	certs := repo.NewCertificateRepo(pool)
	emailLogs := repo.NewEmailLogRepo(pool)

	renderer := render.NewRenderer(appConfig.CertificatesDir)

	mailConfig := mail.NewMailConfig()
	mailServer := mail.NewMailServer(mailConfig)
	sheetsClient := sheets.NewClient(sheets.NewSheetsConfig())

	worker := scheduler.NewDispatchWorker(
		scheduler.NewDispatchConfig(),
		commands.NewSendCertificateEmail(appConfig, mailServer, mailConfig.FromName, certs, emailLogs),
		commands.NewLogCertificateRow(appConfig, sheetsClient),
	)

	handlers := &application.Handlers{
		IssueCertificate:      commands.NewIssueCertificate(appConfig, templates, certs, renderer, worker),
		CreateTemplate:        commands.NewCreateTemplate(appConfig, templates),
		UpdateTemplateMapping: commands.NewUpdateTemplateMapping(templates),
		DeleteTemplate:        commands.NewDeleteTemplate(templates, certs),
		GetCertificate:        query.NewGetCertificate(appConfig, certs),
		VerifyCertificate:     query.NewVerifyCertificate(certs, time.Now),
		GetTemplate:           query.NewGetTemplate(templates),
		ListTemplates:         query.NewListTemplates(templates),
	}

	server := rest.NewServer(handlers)
	app := fiber.New(fiber.Config{
		AppName:     "Certificate Generator API",
		IdleTimeout: 5 * time.Second,
		BodyLimit:   12 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	app.Use("/api", limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
	}))
	app.Static("/static", appConfig.PublicDir)
	rest.RegisterHandlers(app, server, appConfig.APIKey)

	go worker.Start()
	go func() {
		if err := app.Listen(":" + appConfig.Port); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	slog.Info("Gracefully shutting down...")
	_ = app.Shutdown()
	worker.Stop()
	pool.Close()
	slog.Info("Fiber was successfully shutdown.")
}

func runMigrations(dsn string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

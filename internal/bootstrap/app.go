package bootstrap

import (
	"context"
	"fmt"

	"github.com/DemisRincon/skill-up/internal/api"
	"github.com/DemisRincon/skill-up/internal/api/handler"
	"github.com/DemisRincon/skill-up/internal/mailer"
	"github.com/DemisRincon/skill-up/internal/pkg/config"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/DemisRincon/skill-up/internal/pkg/postgres"
	"github.com/DemisRincon/skill-up/internal/repository"
	"github.com/DemisRincon/skill-up/internal/service"
)

type Application struct {
	Config   *config.Config
	Logger   *logger.Logger
	Postgres *postgres.Connection
	Migrator *postgres.Migrator

	ProfileRepo repository.ProfileRepository
	SurveyRepo  repository.SurveyRepository

	Dispatcher *mailer.Dispatcher

	AuthService    *service.AuthService
	SurveyService  *service.SurveyService
	ListingService *service.ListingService

	AuthHandler   *handler.AuthHandler
	SurveyHandler *handler.SurveyHandler
	InviteHandler *handler.InviteHandler

	HTTPServer *api.HTTPServer
}

func New() (*Application, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: cfg.LogAddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	pg, err := postgres.New(log, &postgres.Config{
		Host:              cfg.DatabaseHost,
		Port:              cfg.DatabasePort,
		Username:          cfg.DatabaseUser,
		Password:          cfg.DatabasePassword,
		Database:          cfg.DatabaseName,
		Schema:            cfg.DatabaseSchema,
		SSLMode:           cfg.DatabaseSSLMode,
		MaxConns:          cfg.DatabaseMaxConns,
		MinConns:          cfg.DatabaseMinConns,
		MaxConnLifetime:   cfg.DatabaseMaxConnLifetime,
		MaxConnIdleTime:   cfg.DatabaseMaxConnIdleTime,
		HealthCheckPeriod: cfg.DatabaseHealthCheckPeriod,
		ConnectTimeout:    cfg.DatabaseConnectTimeout,
		AcquireTimeout:    cfg.DatabaseAcquireTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection: %w", err)
	}

	return &Application{
		Config:   cfg,
		Logger:   log,
		Postgres: pg,
	}, nil
}

func (app *Application) Init(ctx context.Context) error {
	app.Logger.Info("initializing application")

	if err := app.Postgres.Connect(ctx); err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}

	app.Migrator = postgres.NewMigrator(app.Postgres.Pool(), &postgres.MigrationConfig{
		Timeout:   app.Config.DatabaseMigrationTimeout,
		TableName: app.Config.DatabaseMigrationTable,
		Enabled:   app.Config.DatabaseMigrationEnabled,
	}, app.Logger)

	if err := app.Migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	app.ProfileRepo = repository.NewProfileRepo(app.Postgres.Pool(), app.Logger)
	app.SurveyRepo = repository.NewSurveyRepo(app.Postgres.Pool(), app.Logger)

	emailClient := mailer.NewEmailJSClient(&mailer.EmailJSConfig{
		Endpoint:   app.Config.EmailJSEndpoint,
		ServiceID:  app.Config.EmailJSServiceID,
		TemplateID: app.Config.EmailJSTemplateID,
		PublicKey:  app.Config.EmailJSPublicKey,
		PrivateKey: app.Config.EmailJSPrivateKey,
		BaseURL:    app.Config.BaseURL,
		Timeout:    app.Config.MailerTimeout,
	})
	app.Dispatcher = mailer.NewDispatcher(emailClient, app.Config.MailerMaxConcurrency, app.Logger)

	app.AuthService = service.NewAuthService(app.ProfileRepo, app.Config.AuthTokenSecret, app.Config.AuthTokenTTL, app.Logger)
	app.SurveyService = service.NewSurveyService(app.SurveyRepo, app.Dispatcher, app.Logger)
	app.ListingService = service.NewListingService(app.SurveyRepo, app.Logger)

	app.AuthHandler = handler.NewAuthHandler(app.AuthService, app.Config.AuthCookieName, app.Config.AuthTokenTTL, app.Logger)
	app.SurveyHandler = handler.NewSurveyHandler(app.SurveyService, app.ListingService, app.Logger)
	app.InviteHandler = handler.NewInviteHandler(app.Dispatcher, app.Logger)

	serverConfig := &api.ServerConfig{
		Host:         app.Config.ServerHost,
		Port:         app.Config.ServerPort,
		ReadTimeout:  app.Config.ServerReadTimeout,
		WriteTimeout: app.Config.ServerWriteTimeout,
		IdleTimeout:  app.Config.ServerIdleTimeout,
	}

	app.HTTPServer = api.NewHTTPServer(
		serverConfig,
		app.AuthHandler,
		app.SurveyHandler,
		app.InviteHandler,
		app.AuthService,
		app.Config.AuthCookieName,
		app.Logger,
	)

	if err := app.HTTPServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	app.Logger.Info("application initialized successfully")
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("shutting down application")

	if app.HTTPServer != nil {
		if err := app.HTTPServer.Stop(ctx); err != nil {
			app.Logger.Error("error stopping http server", "error", err)
		}
	}

	app.Postgres.Close()

	app.Logger.Info("application shutdown completed")
	return nil
}

func (app *Application) Health(ctx context.Context) error {
	if err := app.Postgres.Health(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	if err := app.Migrator.Health(ctx); err != nil {
		return fmt.Errorf("migrator health check failed: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-desk/internal/api/http"
	"github.com/spec-kit/ticket-desk/internal/api/http/handlers"
	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/config"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/observability"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/platform/discord"
	"github.com/spec-kit/ticket-desk/internal/repository"
	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	defer db.Close()

	if cfg.SQLite.RunBootstrap {
		if err := persistence.Bootstrap(ctx, db, logger); err != nil {
			logger.Fatal("failed to bootstrap schema", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	authorizer := auth.NewAuthorizer(cfg.Discord.PrivilegedRoleIDs)
	ticketRepo := repository.NewTicketRepository(db.Handle())

	gateway, err := discord.NewGateway(cfg.Discord, cfg.Export.Path, logger, metrics)
	if err != nil {
		logger.Fatal("failed to create discord gateway", zap.Error(err))
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Messenger:  gateway,
		Dispatcher: dispatcher,
		Authorizer: authorizer,
		Logger:     logger,
	})
	exportService := service.NewExportService(service.ExportDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Authorizer: authorizer,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, gateway, cfg.Discord.TeamMentions, logger)
	worker.StartNotificationWorker(notificationService)

	gateway.Bind(ticketService, exportService)
	if err := gateway.Open(); err != nil {
		logger.Fatal("failed to connect to discord", zap.Error(err))
	}
	defer gateway.Close()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics)

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, db, gateway)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{Health: healthHandler})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

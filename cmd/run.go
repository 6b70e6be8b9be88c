package cmd

import (
	"context"
	"fmt"
	"time"

	"treats/application"
	"treats/config"
	"treats/database"
	"treats/domain/interfaces"
	"treats/domain/services"
	"treats/infrastructure"
	"treats/infrastructure/identityapi"
	"treats/infrastructure/photoapi"
	"treats/server"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the treats service
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Starting treats service...")

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	var eventPublisher interfaces.EventPublisher
	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()
		eventPublisher = infrastructure.NewNATSEventPublisher(natsClient)
	} else {
		log.Warn("NATS_SERVERS not set, events will not be published")
		eventPublisher = infrastructure.NewNoopEventPublisher()
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)

	subjects := photoapi.NewClient(cfg.PhotoServiceURL)
	profiles := identityapi.NewClient(cfg.IdentityServiceURL)

	transferService := services.NewTransferService(uowFactory, subjects)
	creditService := services.NewCreditService(uowFactory)
	leaderboardService := services.NewLeaderboardService(uowFactory, profiles)
	accountService := services.NewAccountService(uowFactory)
	reconciliationService := services.NewReconciliationService(uowFactory)

	worker := application.NewReconciliationWorker(reconciliationService, cfg.ReconcileSchedule)
	stopWorker, err := worker.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start reconciliation worker: %w", err)
	}
	defer stopWorker()

	srv := server.New(server.Config{
		Addr:             cfg.HTTPAddr,
		DailyBonusAmount: cfg.DailyBonusAmount,
	}, transferService, creditService, leaderboardService, accountService)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	log.WithField("environment", cfg.Environment).Info("Treats service is running")

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down treats service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	log.Info("Shutdown completed")
	return nil
}

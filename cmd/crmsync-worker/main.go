// Entry point for the legacy CRM sync worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"

	"salescrm.service/internal/config"
	"salescrm.service/internal/ports/repository"
	"salescrm.service/internal/worker"
	"salescrm.service/internal/worker/crmsync"
	"salescrm.service/internal/worker/legacycrm"
	"salescrm.service/pkg/aws"
	"salescrm.service/pkg/database"
	"salescrm.service/pkg/logger"
	"salescrm.service/pkg/telemetry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	logger.Setup("salescrm-crmsync-worker", cfg.IsLocalDev)

	shutdownTracer, err := telemetry.InitTracer("salescrm-crmsync-worker", cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	sqsClient := sqs.NewFromConfig(awsCfg)
	leadRepo := repository.NewLeadRepository(db)

	legacyClient := legacycrm.NewHTTPClient(cfg.LegacyCRMURL)
	processor := crmsync.NewProcessor(leadRepo, legacyClient)

	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqsClient, cfg.CrmSyncSQSQueueURL, processor)

	go func() {
		app.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()

	log.Info().Msg("Worker exited gracefully")
}

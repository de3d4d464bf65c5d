// Entry point for REST API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"salescrm.service/internal/api"
	"salescrm.service/internal/config"
	"salescrm.service/internal/core"
	"salescrm.service/internal/core/assign"
	"salescrm.service/internal/core/attendance"
	"salescrm.service/internal/ports/messaging"
	"salescrm.service/internal/ports/repository"
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

	logger.Setup("salescrm-api", cfg.IsLocalDev)

	shutdownTracer, err := telemetry.InitTracer("salescrm-api", cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	db, err := database.NewInstrumentedConnection(cfg)
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
	producer := messaging.NewSQSProducer(sqsClient, cfg.CrmSyncSQSQueueURL, cfg.EmailSQSQueueURL)

	employeeRepo := repository.NewEmployeeRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	callRepo := repository.NewCallRepository(db)
	uploadRepo := repository.NewCsvUploadRepository(db)

	engine := assign.NewEngine(leadRepo, employeeRepo, activityRepo, uploadRepo, producer)
	attendanceService := attendance.NewService(attendanceRepo, employeeRepo, cfg.TabCloseGrace())

	services := api.Services{
		Leads:      core.NewLeadService(leadRepo, employeeRepo, activityRepo, uploadRepo, producer),
		Employees:  core.NewEmployeeService(employeeRepo, engine),
		Calls:      core.NewCallService(callRepo, leadRepo, employeeRepo),
		Activities: core.NewActivityService(activityRepo),
		Dashboard:  core.NewDashboardService(leadRepo, employeeRepo, callRepo),
		Attendance: attendanceService,
		Engine:     engine,
	}

	router := api.NewRouter(services)

	// Background presence sweeper, stopped with the server.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := attendance.NewSweeper(attendanceService, employeeRepo, cfg.SweepInterval(), cfg.OfflineAfter())
	go sweeper.Start(sweepCtx)

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(corsMiddleware.Handler(loggerMiddleware(router)), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"asset-prediction-orchestrator/api/rest/routes"
	"asset-prediction-orchestrator/config"
	"asset-prediction-orchestrator/core/forecast"
	"asset-prediction-orchestrator/core/lifecycle"
	"asset-prediction-orchestrator/core/logging"
	"asset-prediction-orchestrator/core/pipeline"
	"asset-prediction-orchestrator/core/reconciler"
	"asset-prediction-orchestrator/core/repository"
	"asset-prediction-orchestrator/providers/aws"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	// Initialize database
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database connected")

	// Initialize AWS provider
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsClient, err := aws.NewClient(ctx, cfg.AWSRegion, aws.Options{
		PipelineName:          cfg.PipelineName,
		AssetBucket:           cfg.AssetBucket,
		AssetKeyPrefix:        cfg.AssetKeyPrefix,
		EndpointInstanceType:  cfg.EndpointInstanceType,
		EndpointInstanceCount: cfg.EndpointInstanceCount,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AWS client")
	}

	// Initialize repositories
	executionRepo := repository.NewExecutionRepository(db)
	endpointRepo := repository.NewEndpointRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	predictionRepo := repository.NewPredictionRepository(db)

	// Initialize core components
	statusReconciler := reconciler.NewStatusHistoryReconciler(executionRepo)
	modelHandler := reconciler.NewModelAttachmentHandler(executionRepo, awsClient, cfg.ModelTagRetryDelay, cfg.ModelTagRetries)
	endpointManager := lifecycle.NewEndpointManager(executionRepo, endpointRepo, awsClient)
	assetsDataURL := fmt.Sprintf("s3://%s/%s", cfg.AssetBucket, cfg.AssetKeyPrefix)
	launcher := pipeline.NewLauncher(executionRepo, templateRepo, awsClient, assetsDataURL)
	orchestrator := forecast.NewOrchestrator(executionRepo, templateRepo, predictionRepo, endpointRepo, awsClient, awsClient)

	// Start the endpoint cleanup scheduler
	cleanup := lifecycle.NewCleanupScheduler(endpointRepo, endpointManager, cfg.EndpointExpiry, cfg.CleanupInterval)
	go cleanup.Start(ctx)

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, routes.Deps{
		Executions:   executionRepo,
		Templates:    templateRepo,
		Predictions:  predictionRepo,
		Launcher:     launcher,
		Manager:      endpointManager,
		Orchestrator: orchestrator,
		Statuses:     statusReconciler,
		Models:       modelHandler,
	})

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

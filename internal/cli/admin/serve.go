package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clauselens/clauselens/internal/api/handlers"
	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/database"
	"github.com/clauselens/clauselens/internal/jobs"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/repository"
	"github.com/clauselens/clauselens/internal/server"
	"github.com/clauselens/clauselens/internal/service"
	"github.com/clauselens/clauselens/internal/storage"
	"github.com/clauselens/clauselens/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the clauselens API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	// The server starts without provider credentials; requests that need the
	// model then fail with a missing-credentials error instead of at boot.
	var (
		provider llm.Provider
		embedder llm.Embedder
	)
	if cfg.APIKey() != "" {
		provider, err = llm.NewProvider(ctx, cfg.LLMConfig())
		if err != nil {
			return fmt.Errorf("failed to create model provider: %w", err)
		}
		embedder, err = llm.NewEmbedder(ctx, cfg.LLMConfig())
		if err != nil {
			return fmt.Errorf("failed to create embedding provider: %w", err)
		}
		log.Printf("model provider ready: %s", provider.Name())
	} else {
		log.Println("no provider API key configured, analysis requests will be rejected")
	}

	var (
		saveWorker *jobs.SaveWorker
		history    handlers.HistoryService
		sink       service.AnalysisSink
	)
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		analysisRepo := repository.NewAnalysisRepository(pool)
		saveWorker = jobs.NewSaveWorker(analysisRepo, embedder, 64)
		go saveWorker.Start(ctx)
		sink = saveWorker
		history = service.NewHistoryService(analysisRepo, embedder)
	} else {
		log.Println("no database configured, analyses will not be stored")
	}

	var store storage.Storage
	switch {
	case cfg.HasS3():
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		store = s3Client
	case cfg.ReportsDir != "":
		local, err := storage.NewLocalStorage(cfg.ReportsDir)
		if err != nil {
			return fmt.Errorf("failed to create local report storage: %w", err)
		}
		log.Printf("local report storage ready at %s", cfg.ReportsDir)
		store = local
	}

	assembler, err := service.NewContentAssembler(service.DefaultChunkConfig())
	if err != nil {
		return fmt.Errorf("failed to create content assembler: %w", err)
	}

	analysisSvc := service.NewAnalysisService(provider, sink)
	indexes := service.NewIndexCache(cfg.IndexCacheSize)
	followupSvc := service.NewFollowupService(provider, embedder, indexes, assembler)

	var exporter handlers.BatchExporter
	if store != nil {
		exporter = service.NewReportExporter(store)
	}

	strategy := cfg.Strategy()
	analysisHandler := handlers.NewAnalysisHandler(analysisSvc, history, exporter, strategy)
	followupHandler := handlers.NewFollowupHandler(followupSvc, strategy)

	router := server.NewRouter(server.RouterConfig{
		APIToken:        cfg.APIToken,
		AnalysisHandler: analysisHandler,
		FollowupHandler: followupHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if saveWorker != nil {
		saveWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

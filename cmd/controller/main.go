// Package main is the entry point for the storeplane controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"storeplane/internal/audit"
	"storeplane/internal/cluster"
	"storeplane/internal/config"
	"storeplane/internal/controller"
	"storeplane/internal/controller/handlers"
	"storeplane/internal/installer"
	"storeplane/internal/logger"
	"storeplane/internal/observability"
	"storeplane/internal/provision"
	"storeplane/internal/store"
	"storeplane/internal/store/postgres"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	configPath := flag.String("config", "", "Path to config file (default: environment only)")
	flag.Parse()

	// Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	// Setup Database
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	// Run migrations if requested
	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(db.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "storeplane-controller", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics("storeplane-controller")
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Use an Observable Gauge (Async) that queries the DB only when scraped.
	meter := otel.Meter("storeplane-controller")
	_, err = meter.Int64ObservableGauge("storeplane.stores",
		metric.WithDescription("Current number of store records by status"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			counts, err := db.CountStoresByStatus(ctx)
			if err != nil {
				log.Printf("Failed to count stores: %v", err)
				return nil // Don't crash metrics scrape on DB error
			}
			for _, status := range []store.StoreStatus{store.StoreStatusProvisioning, store.StoreStatusReady, store.StoreStatusFailed} {
				obs.Observe(counts[status], metric.WithAttributes(attribute.String("status", string(status))))
			}
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register store count metric: %v", err)
	}

	// Cluster client and package installer
	kube, err := cluster.New(cfg.Kubeconfig, slogger)
	if err != nil {
		log.Fatalf("Failed to init cluster client: %v", err)
	}
	helm := installer.NewHelm(cfg.HelmBin, cfg.ChartDir, cfg.HelmTimeout, slogger)

	recorder := audit.NewRecorder(db, slogger)
	provisioner := provision.New(db, kube, helm, recorder, provision.Config{
		BaseDomain:        cfg.BaseDomain,
		PublicIP:          cfg.PublicIP,
		MaxStoresPerOwner: cfg.MaxStoresPerOwner,
		PollInterval:      cfg.PollInterval,
		PollMaxAttempts:   cfg.PollMaxAttempts,
		ProvisionTimeout:  cfg.ProvisionTimeout,
		MaxConcurrent:     cfg.ProvisionConcurrency,
	}, slogger)

	// Reconcile records stranded by a previous crash before serving.
	// Runs in the background so a slow cluster doesn't delay startup.
	sweeper := provision.NewSweeper(db, kube, cfg.ReconcileMaxAge, cfg.PublicIP, slogger)
	go func() {
		if err := sweeper.Run(ctx); err != nil {
			slogger.Error("reconciliation sweep failed", "error", err)
		}
	}()

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	h := handlers.New(provisioner, recorder, db)
	srv := controller.New(addr, h, metricsHandler, cfg.RateLimit, cfg.RateLimitBurst)

	go func() {
		log.Printf("StorePlane Controller starting on %s", addr)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down controller...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight provisioning pipelines finish before exit. The
	// startup sweep repairs anything that still gets cut off.
	log.Println("Draining provisioning pipelines...")
	provisioner.Wait()
	log.Println("Server exited properly")
}

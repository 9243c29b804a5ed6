// Package main is the entry point for the portal core API server.
//
// It loads configuration, connects the Postgres pool and the external
// user/session provider, builds the tier catalog and quota machinery, wires
// the domain handlers onto the core chassis, and serves HTTP with graceful
// shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"siport/internal/api/handlers"
	"siport/internal/billing"
	"siport/internal/config"
	"siport/internal/core"
	"siport/internal/db"
	"siport/internal/events"
	"siport/internal/external"
	"siport/internal/gate"
	"siport/internal/guard"
	"siport/internal/quota"
	"siport/internal/session"
	"siport/internal/tiers"
	"siport/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("portal core starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"event_timezone", cfg.Event.Timezone,
	)

	venueLoc, err := cfg.VenueLocation()
	if err != nil {
		return fmt.Errorf("loading venue timezone: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database pool.
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	// External user/session provider. Profile reads can come from the synced
	// Postgres mirror instead of a per-action provider round trip.
	userStore := external.NewUserStoreClient(
		&http.Client{Timeout: cfg.UserStore.Timeout},
		cfg.UserStore.BaseURL,
		cfg.UserStore.APIKey.Reveal(),
	)
	var directory types.UserDirectory = userStore
	if cfg.UserStore.UseDBMirror {
		logger.Info("profile lookups using database mirror")
		directory = db.NewProfileRepo(pool)
	}

	// Tier catalog and quota machinery.
	catalog := tiers.NewStaticCatalog()
	resolver := tiers.NewResolver(catalog)
	engine := quota.NewEngine(resolver)
	clock := types.RealClock{}
	states := session.NewRegistry(clock, venueLoc, logger)

	// Domain stores.
	connections := db.NewConnectionRepo(pool)
	messages := db.NewMessageRepo(pool)
	meetings := db.NewMeetingRepo(pool)
	appointments := db.NewAppointmentRepo(pool)

	// Action events and metrics, wired only when the queue is configured.
	sink, metrics, err := newEventInfra(ctx, cfg, clock, logger)
	if err != nil {
		return fmt.Errorf("wiring event infrastructure: %w", err)
	}

	actionGate := gate.New(gate.Config{
		Directory:    directory,
		Resolver:     resolver,
		Engine:       engine,
		States:       states,
		Connections:  connections,
		Messages:     messages,
		Meetings:     meetings,
		Appointments: appointments,
		Events:       sink,
		Metrics:      metrics,
		Clock:        clock,
		Logger:       logger,
	})

	upgrades := billing.NewUpgradeService(
		&http.Client{Timeout: 20 * time.Second},
		catalog,
		billing.UpgradeServiceConfig{
			SecretKey: cfg.Billing.StripeSecretKey.Reveal(),
			Logger:    logger,
		},
	)

	// Chassis and handlers.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.SessionResolver = userStore
	srv.Health = pool

	networkingHandler := handlers.NewNetworkingHandler(actionGate, srv.Validator, logger)
	appointmentHandler := handlers.NewAppointmentHandler(actionGate, srv.Validator, logger)
	quotaHandler := handlers.NewQuotaHandler(directory, resolver, engine, states, appointments, logger)
	sessionHandler := handlers.NewSessionHandler(states, logger)
	billingHandler := handlers.NewBillingHandler(upgrades, srv.Validator, logger)
	loungeHandler := handlers.NewLoungeHandler(guard.New(catalog), logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		networkingHandler.RegisterRoutes,
		appointmentHandler.RegisterRoutes,
		quotaHandler.RegisterRoutes,
		sessionHandler.RegisterRoutes,
		billingHandler.RegisterRoutes,
		loungeHandler.RegisterRoutes,
	)

	srv.MountRoutes()

	return runHTTPServer(ctx, srv, cfg, logger)
}

// newPool builds the pgx connection pool from the tuning parameters.
func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL.Reveal())
	if err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.Database.AcquireTimeout

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// newEventInfra wires the SQS action event publisher and CloudWatch metrics.
// When no queue is configured (local development), both degrade to no-ops:
// the Gate treats a nil sink as "don't publish" and NopMetrics swallows
// everything.
func newEventInfra(ctx context.Context, cfg *config.Config, clock types.Clock, logger *slog.Logger) (types.EventSink, types.ActionMetrics, error) {
	if cfg.AWS.EventsQueueURL == "" {
		logger.Info("action events disabled: no SQS queue configured")
		return nil, events.NopMetrics{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, nil, fmt.Errorf("loading AWS config: %w", err)
	}

	endpoint := cfg.AWS.EndpointURL
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publisher, err := events.NewPublisher(sqsClient, cfg.AWS.EventsQueueURL, logger)
	if err != nil {
		return nil, nil, err
	}
	metrics := events.NewCloudWatchActionMetrics(cwClient, clock, logger)
	return publisher, metrics, nil
}

// runHTTPServer serves HTTP until the context is cancelled or the listener
// fails, then shuts down gracefully within the configured deadline.
func runHTTPServer(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

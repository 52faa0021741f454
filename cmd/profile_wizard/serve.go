package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/worker-profile-wizard/internal/config"
	"github.com/jonathan/worker-profile-wizard/internal/db"
	"github.com/jonathan/worker-profile-wizard/internal/events"
	"github.com/jonathan/worker-profile-wizard/internal/logging"
	"github.com/jonathan/worker-profile-wizard/internal/metrics"
	"github.com/jonathan/worker-profile-wizard/internal/refdata"
	"github.com/jonathan/worker-profile-wizard/internal/schemas"
	"github.com/jonathan/worker-profile-wizard/internal/server"
	"github.com/jonathan/worker-profile-wizard/internal/server/ratelimit"
	"github.com/jonathan/worker-profile-wizard/internal/service"
	"github.com/jonathan/worker-profile-wizard/internal/session"
	"github.com/jonathan/worker-profile-wizard/internal/uploads"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the wizard API.

Backends are enabled by configuration: REDIS_URL selects the Redis session store
(memory otherwise), DATABASE_URL enables saved profiles, S3_BUCKET enables
attachment uploads and KAFKA_BROKERS enables event publishing. JWT_SECRET is required.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (env vars override file values)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	m := metrics.New()
	svc, err := service.New(service.Dependencies{
		Store:     b.store,
		Profiles:  b.profiles,
		Validator: b.validator,
		Uploader:  b.uploader,
		Publisher: b.publisher,
		Metrics:   m,
		Logger:    logger,
	}, service.Options{
		StepCommitDelay: cfg.StepCommitDelay.Std(),
		SaveDelay:       cfg.SaveDelay.Std(),
	})
	if err != nil {
		return err
	}

	ref, err := refdata.Load()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Wizard:      svc,
		RefData:     ref,
		Metrics:     m,
		Logger:      logger,
		JWT:         server.NewJWTService(jwtConfig),
		RateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// backends holds the optional infrastructure the service runs on.
type backends struct {
	store     session.Store
	database  *db.DB
	profiles  service.ProfileRepository
	validator service.DocumentValidator
	uploader  uploads.Uploader
	publisher events.Publisher
	logger    *zap.Logger
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *backends, err error) {
	b := &backends{publisher: events.NopPublisher{}, logger: logger}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL.Std())
		if err != nil {
			return nil, err
		}
		b.store = rs
		logger.Info("using redis session store")
	} else {
		b.store = session.NewMemoryStore(cfg.SessionTTL.Std())
		logger.Warn("REDIS_URL not set, sessions are kept in memory")
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.database = database
		b.profiles = database.Profiles()
	} else {
		logger.Warn("DATABASE_URL not set, profile saves are not persisted")
	}

	if cfg.ProfileSchema != "" {
		v, err := schemas.LoadValidator(cfg.ProfileSchema)
		if err != nil {
			return nil, err
		}
		b.validator = v
	}

	if cfg.S3Bucket != "" {
		u, err := uploads.NewS3Uploader(ctx, uploads.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Expires:   cfg.UploadURLExpires.Std(),
		})
		if err != nil {
			return nil, err
		}
		b.uploader = u
	}

	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			return nil, err
		}
		b.publisher = p
	}

	return b, nil
}

// Close releases every opened backend.
func (b *backends) Close() {
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			b.logger.Warn("failed to close event publisher", zap.Error(err))
		}
	}
	if b.database != nil {
		b.database.Close()
	}
	if b.store != nil {
		if err := b.store.Close(); err != nil {
			b.logger.Warn("failed to close session store", zap.Error(err))
		}
	}
}

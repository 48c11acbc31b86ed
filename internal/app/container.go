package app

import (
	"context"
	"fmt"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/database/migration"
	dbpostgres "jobboard/internal/database/postgres"
	"jobboard/internal/infrastructure/cache"
	"jobboard/internal/infrastructure/geocoder"
	"jobboard/internal/infrastructure/mailer"
	"jobboard/internal/infrastructure/storage"
	"jobboard/internal/logging"
	"jobboard/internal/pkg/jwt"
	"jobboard/internal/repository"
	"jobboard/internal/scheduler"
	authuc "jobboard/internal/usecase/auth"
	jobuc "jobboard/internal/usecase/job"
	useruc "jobboard/internal/usecase/user"
	"jobboard/internal/ws"
)

const geocodeCacheTTL = 30 * 24 * time.Hour

// Container owns every long-lived dependency of the server.
type Container struct {
	Config config.Config
	Logger logging.Logger

	DB        database.DB
	Cache     *cache.Redis
	Store     storage.Store
	Hub       *ws.Hub
	Scheduler *scheduler.Scheduler

	Users *repository.PostgresUserRepository
	Jobs  *repository.PostgresJobRepository
	JWT   jwt.Service

	AuthService *authuc.Service
	UserService *useruc.Service
	JobService  *jobuc.Service
}

func NewContainer(ctx context.Context, cfg config.Config, logger logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, DB: db}
	if err := c.build(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) build(ctx context.Context) error {
	cfg := c.Config

	runner := migration.Runner{Logger: c.Logger}
	if err := runner.Run(ctx, c.DB.SQLDB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	c.Cache = cache.NewRedis(ctx, cfg.Redis, c.Logger)

	store, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("resume storage: %w", err)
	}
	c.Store = store

	c.Users = repository.NewPostgresUserRepository(c.DB)
	c.Jobs = repository.NewPostgresJobRepository(c.DB)
	c.JWT = jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	c.Hub = ws.NewHub(c.Logger)

	geo, err := c.newGeocoder(ctx)
	if err != nil {
		return err
	}

	c.JobService = jobuc.NewService(c.Jobs, geo, c.Store, c.Cache, ws.NewNotifier(c.Hub), c.Logger, jobuc.Options{
		MaxResumeSize: cfg.App.MaxFileUpload,
		StatsTTL:      cfg.Redis.TTL,
	})
	c.AuthService = authuc.NewService(c.Users, c.JWT, mailer.NewSMTP(cfg.SMTP, c.Logger), c.Logger)
	c.UserService = useruc.NewService(c.Users, repository.NewTransactor(c.DB), c.Store, c.Logger)

	c.Scheduler = scheduler.New(c.Logger)
	if err := c.Scheduler.AddTokenSweep(cfg.Scheduler.TokenSweepSpec, c.Users); err != nil {
		return err
	}
	return nil
}

// newGeocoder returns a nil interface, not a typed nil, when geocoding is off.
func (c *Container) newGeocoder(ctx context.Context) (jobuc.Geocoder, error) {
	cfg := c.Config.Geocoder
	if cfg.APIKey == "" {
		c.Logger.Warn(ctx, "geocoder disabled: jobs are stored without a location")
		return nil, nil
	}
	if cfg.Provider != "mapquest" {
		return nil, fmt.Errorf("unsupported geocoder provider %q", cfg.Provider)
	}
	provider := geocoder.NewMapQuest(cfg.BaseURL, cfg.APIKey, c.Logger)
	return geocoder.NewCached(provider, c.Cache, geocodeCacheTTL, c.Logger), nil
}

func newStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.App.ResumeStorage == config.StorageS3 {
		return storage.NewS3(ctx, cfg.S3)
	}
	return storage.NewLocal(cfg.App.UploadDir)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.Warn(context.Background(), "cache close failed", "error", err)
		}
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bshishov/timelinewiki/internal/adapters/events"
	"github.com/bshishov/timelinewiki/internal/adapters/httpapi"
	sqliteadapter "github.com/bshishov/timelinewiki/internal/adapters/sqlite"
	"github.com/bshishov/timelinewiki/internal/adapters/sqlite/gormsqlite"
	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/ports"
	"github.com/bshishov/timelinewiki/internal/core/resources"
	"github.com/bshishov/timelinewiki/internal/core/usecase"
	"github.com/bshishov/timelinewiki/internal/core/validation"
	"github.com/bshishov/timelinewiki/internal/logger"
	"github.com/bshishov/timelinewiki/migrations"
)

type Config struct {
	Addr   string
	DBPath string
	Logger *logger.Logger

	// StrictValidators turns validator failures into violations instead of
	// logging and skipping them.
	StrictValidators bool

	BootstrapAPIKey string
	BootstrapEmail  string
	BootstrapRole   string

	WebhookURL    string
	WebhookSecret string
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// LoadRegistry compiles the request descriptors with the validation options
// derived from cfg.
func LoadRegistry(cfg Config) (*resources.Registry, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	opts := []validation.SchemaOption{validation.WithLogger(log.Logger)}
	if cfg.StrictValidators {
		opts = append(opts, validation.WithStrictEvaluation())
	}
	return resources.Load(opts...)
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	registry, err := LoadRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	realmRepo := sqliteadapter.NewRealmRepository(db)
	eventRepo := sqliteadapter.NewEventRepository(db)
	apiKeyRepo := sqliteadapter.NewAPIKeyRepository(db)
	auditRepo := sqliteadapter.NewAuditRepository(db)
	outboxRepo := sqliteadapter.NewOutboxRepository(db)

	input := usecase.NewInputValidator(registry)
	realmService := usecase.NewRealmService(realmRepo, input)
	eventService := usecase.NewEventService(realmRepo, eventRepo, input)
	authService := usecase.NewAuthService(apiKeyRepo, input)
	auditService := usecase.NewAuditService(auditRepo)

	var publisher ports.ChangePublisher = events.NewLogPublisher(log)
	if cfg.WebhookURL != "" {
		publisher = events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, 10*time.Second)
		log.Info().Str("url", cfg.WebhookURL).Msg("webhook delivery enabled")
	}

	if cfg.BootstrapAPIKey != "" {
		if err := bootstrapKey(apiKeyRepo, cfg); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	dispatcher := usecase.NewOutboxDispatcher(outboxRepo, publisher, log, 2*time.Second, 100)
	dispatcher.Start(context.Background())

	handler := httpapi.NewHandler(realmService, eventService, authService, auditService, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{dispatcher, db}}, nil
}

func bootstrapKey(repo ports.APIKeyRepository, cfg Config) error {
	email := cfg.BootstrapEmail
	if email == "" {
		email = "admin@localhost"
	}
	role := cfg.BootstrapRole
	if role == "" {
		role = domain.RoleAdmin
	}
	if role != domain.RoleAdmin && role != domain.RoleEditor {
		return fmt.Errorf("bootstrap api key: unknown role %q", role)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := repo.Upsert(ctx, domain.APIKey{
		TokenHash: usecase.HashToken(cfg.BootstrapAPIKey),
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("bootstrap api key: %w", err)
	}
	return nil
}

package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/events"
	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/httpapi"
	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/security"
	sqliteadapter "github.com/atvirokodosprendimai/feedbackapi/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/feedbackapi/internal/config"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/usecase"
	"github.com/atvirokodosprendimai/feedbackapi/migrations"
)

type resourceCloser struct {
	closers []io.Closer
}

// Close runs closers in order; the dispatcher comes first so background
// notifications drain before their sinks and the database go away.
func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg config.Config, log zerolog.Logger) (*http.Server, io.Closer, error) {
	db, err := gormsqlite.Open(cfg.DBPath, log)
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
	if _, err := migrations.Up(migrateCtx, writeSQLDB, log.With().Str("component", "migrations").Logger()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = ephemeralSecret()
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Warn().Msg("dev-mode: using an ephemeral jwt secret, sessions will not survive restarts")
	}
	tokens, err := security.NewSessionIssuer(jwtSecret, cfg.SessionTTL)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("session issuer: %w", err)
	}

	notifier, redisCloser, err := buildNotifier(cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	projectRepo := sqliteadapter.NewProjectRepository(db)
	feedbackRepo := sqliteadapter.NewFeedbackRepository(db)
	principalRepo := sqliteadapter.NewPrincipalRepository(db)
	insightsStore := sqliteadapter.NewInsightsStore(db)

	dispatcher := usecase.NewNotificationDispatcher(notifier, log, cfg.NotifyGrace, cfg.NotifyTimeout)
	guard := usecase.NewOwnershipGuard(projectRepo, log)
	directory := usecase.NewTenantDirectory(projectRepo, principalRepo, log,
		usecase.WithDefaultOwnerEmail(cfg.DefaultOwnerEmail))

	services := httpapi.Services{
		Ingestion: usecase.NewIngestionService(directory, feedbackRepo, dispatcher, log,
			usecase.WithCredentialPolicy(cfg.CredentialPolicy())),
		Feedback:   usecase.NewFeedbackService(guard, feedbackRepo),
		Projects:   usecase.NewProjectService(guard, projectRepo, feedbackRepo, log),
		Insights:   usecase.NewInsightsService(guard, projectRepo, insightsStore),
		Principals: usecase.NewPrincipalService(principalRepo, security.NewArgon2Hasher(security.DefaultArgon2Params()), tokens, log),
	}

	handler, err := httpapi.NewHandler(services, log, httpapi.Options{
		IngestRateLimit: cfg.IngestRateLimit,
		DevMode:         cfg.DevMode,
		Metrics:         httpapi.NewMetrics(dispatcher),
		Ready:           db.Ping,
	})
	if err != nil {
		_ = dispatcher.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("build http handler: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{dispatcher, redisCloser, db}}, nil
}

// buildNotifier always logs and additionally fans out to the webhook and
// Redis channels that are configured.
func buildNotifier(cfg config.Config, log zerolog.Logger) (ports.Notifier, io.Closer, error) {
	notifiers := []ports.Notifier{events.NewLogNotifier(log)}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, events.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret, cfg.NotifyTimeout))
	}

	var closer io.Closer
	if cfg.RedisURL != "" {
		client, err := events.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis client: %w", err)
		}
		notifiers = append(notifiers, events.NewRedisNotifier(client, cfg.RedisChannel))
		closer = client
	}
	return events.NewFanout(notifiers...), closer, nil
}

func ephemeralSecret() (string, error) {
	buf := make([]byte, config.MinJWTSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

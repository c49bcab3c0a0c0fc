package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/atvirokodosprendimai/feedbackapi/internal/app"
	"github.com/atvirokodosprendimai/feedbackapi/internal/config"
	"github.com/atvirokodosprendimai/feedbackapi/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cmd := &cli.Command{
		Name:  "feedbackapi",
		Usage: "Multi-tenant feedback ingestion and insights API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Sources: cli.EnvVars(config.EnvPrefix + "_CONFIG"),
				Usage:   "Optional YAML, TOML or JSON config file",
			},
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "db-path", Usage: "SQLite file path"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "json or console"},
			&cli.BoolFlag{Name: "dev-mode", Usage: "Relax security headers and allow an ephemeral jwt secret"},
			&cli.StringFlag{Name: "jwt-secret", Usage: "HS256 session signing secret (at least 32 bytes)"},
			&cli.DurationFlag{Name: "session-ttl", Usage: "Session token lifetime"},
			&cli.StringFlag{Name: "default-owner-email", Usage: "Principal that owns the default project"},
			&cli.StringFlag{Name: "unknown-key-policy", Usage: "degrade or reject submissions with an unknown api key"},
			&cli.StringFlag{Name: "ingest-rate-limit", Usage: "Per-IP ingestion limit such as 60-M; empty disables"},
			&cli.DurationFlag{Name: "notify-grace", Usage: "How long ingestion waits for the notification"},
			&cli.DurationFlag{Name: "notify-timeout", Usage: "Upper bound for one notification delivery"},
			&cli.StringFlag{Name: "webhook-url", Usage: "Notification webhook target URL"},
			&cli.StringFlag{Name: "webhook-secret", Usage: "HMAC-SHA256 signing secret for webhook requests"},
			&cli.StringFlag{Name: "redis-url", Usage: "Redis URL for pub/sub notifications"},
			&cli.StringFlag{Name: "redis-channel", Usage: "Redis channel for notifications"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"), flagOverrides(c))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			server, closer, err := app.NewServer(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					log.Error().Err(closeErr).Msg("close resources")
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Msg("listening")
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
				return shutdown(server)
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				return shutdown(server)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fatalLog := zerolog.New(os.Stderr)
		fatalLog.Fatal().Err(err).Msg("feedbackapi exited")
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

// flagOverrides returns only flags given on the command line so they do not
// mask file or environment values with their zero defaults.
func flagOverrides(c *cli.Command) map[string]any {
	overrides := map[string]any{}
	for _, name := range []string{
		"addr", "db-path", "log-level", "log-format", "jwt-secret",
		"default-owner-email", "unknown-key-policy", "ingest-rate-limit",
		"webhook-url", "webhook-secret", "redis-url", "redis-channel",
	} {
		if c.IsSet(name) {
			overrides[name] = c.String(name)
		}
	}
	for _, name := range []string{"session-ttl", "notify-grace", "notify-timeout"} {
		if c.IsSet(name) {
			overrides[name] = c.Duration(name)
		}
	}
	if c.IsSet("dev-mode") {
		overrides["dev-mode"] = c.Bool("dev-mode")
	}
	return overrides
}

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
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/bshishov/timelinewiki/internal/app"
	"github.com/bshishov/timelinewiki/internal/logger"
)

func main() {
	cmd := &cli.Command{
		Name:  "timelinewiki",
		Usage: "Timeline wiki API over SQLite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Sources: cli.EnvVars("TIMELINEWIKI_ADDR"),
				Usage:   "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "db-path",
				Value:   "./timelinewiki.sqlite",
				Sources: cli.EnvVars("TIMELINEWIKI_DB_PATH"),
				Usage:   "SQLite file path",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("TIMELINEWIKI_LOG_LEVEL"),
				Usage:   "Log level (trace, debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:    "strict-validators",
				Sources: cli.EnvVars("TIMELINEWIKI_STRICT_VALIDATORS"),
				Usage:   "Report validator failures as violations instead of skipping them",
			},
			&cli.StringFlag{
				Name:    "bootstrap-api-key",
				Sources: cli.EnvVars("TIMELINEWIKI_BOOTSTRAP_API_KEY"),
				Usage:   "Optional API key to upsert at startup",
			},
			&cli.StringFlag{
				Name:    "bootstrap-email",
				Value:   "admin@localhost",
				Sources: cli.EnvVars("TIMELINEWIKI_BOOTSTRAP_EMAIL"),
				Usage:   "Email bound to the bootstrap API key",
			},
			&cli.StringFlag{
				Name:    "bootstrap-role",
				Value:   "admin",
				Sources: cli.EnvVars("TIMELINEWIKI_BOOTSTRAP_ROLE"),
				Usage:   "Role of the bootstrap API key (admin or editor)",
			},
			&cli.StringFlag{
				Name:    "webhook-url",
				Sources: cli.EnvVars("TIMELINEWIKI_WEBHOOK_URL"),
				Usage:   "Change feed webhook target URL",
			},
			&cli.StringFlag{
				Name:    "webhook-secret",
				Sources: cli.EnvVars("TIMELINEWIKI_WEBHOOK_SECRET"),
				Usage:   "HMAC-SHA256 signing secret for outbound webhook requests",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Validate a JSON or YAML document against a request descriptor",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "schema",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Registered descriptor name or path to a descriptor file",
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Path to the JSON or YAML document to check",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: app.FormatViolations,
						Usage: "Output format: violations, tree or endpoints",
					},
					&cli.BoolFlag{
						Name:  "hide-valid",
						Usage: "Skip valid subtrees in the tree format",
					},
				},
				Action: runCheck,
			},
		},
		Action: runServer,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		log.Fatal().Err(err).Msg("timelinewiki failed")
	}
}

func newLogger(c *cli.Command, role string) (*logger.Logger, error) {
	level, err := logger.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return logger.NewLogger(role, level), nil
}

func runCheck(_ context.Context, c *cli.Command) error {
	// diagnostics only; keep stdout clean for the report
	l := logger.New(os.Stderr, "check", zerolog.WarnLevel)
	cfg := app.Config{
		Logger:           l,
		StrictValidators: c.Bool("strict-validators"),
	}
	registry, err := app.LoadRegistry(cfg)
	if err != nil {
		return err
	}

	err = app.Check(os.Stdout, registry, app.CheckRequest{
		Schema:    c.String("schema"),
		Input:     c.String("input"),
		Format:    c.String("format"),
		HideValid: c.Bool("hide-valid"),
	})
	if errors.Is(err, app.ErrInputInvalid) {
		return cli.Exit("", 1)
	}
	return err
}

func runServer(ctx context.Context, c *cli.Command) error {
	l, err := newLogger(c, "server")
	if err != nil {
		return err
	}

	cfg := app.Config{
		Addr:             c.String("addr"),
		DBPath:           c.String("db-path"),
		Logger:           l,
		StrictValidators: c.Bool("strict-validators"),
		BootstrapAPIKey:  c.String("bootstrap-api-key"),
		BootstrapEmail:   c.String("bootstrap-email"),
		BootstrapRole:    c.String("bootstrap-role"),
		WebhookURL:       c.String("webhook-url"),
		WebhookSecret:    c.String("webhook-secret"),
	}

	server, closer, err := app.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			l.Error().Err(closeErr).Msg("close resources")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		l.Info().Str("addr", cfg.Addr).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case sig := <-sigCh:
		l.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/cache"
	"github.com/Belphemur/BatchFetch/internal/client"
	"github.com/Belphemur/BatchFetch/internal/config"
	"github.com/Belphemur/BatchFetch/internal/fetch"
	"github.com/Belphemur/BatchFetch/internal/metrics"
	"github.com/Belphemur/BatchFetch/internal/progress"
	"github.com/Belphemur/BatchFetch/internal/telemetry"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

// run executes one batch and returns the process exit code. Failed or empty
// identifiers do not change the exit code; only setup failures, fatal local
// I/O errors and interruptions do.
func run(parent context.Context, args []string, stdout io.Writer) int {
	flags := config.NewFlagSet("batchfetch")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	logger := config.GetLogger()
	cfg, err := config.Load(flags)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return exitFailure
	}
	config.ConfigureLogging(cfg.LogLevel)

	runID := newRunID()
	config.AttachRunID(runID)
	logger = config.GetLogger()

	reporter, err := telemetry.New(cfg.Sentry.DSN, cfg.Sentry.Environment, runID)
	if err != nil {
		logger.Warn().Err(err).Msg("Sentry reporting disabled")
		reporter, _ = telemetry.New("", "", runID)
	}
	defer reporter.Flush(2 * time.Second)

	j, err := cfg.CompileJob()
	if err != nil {
		logger.Error().Err(err).Str("profile", cfg.Profile).Msg("Invalid job")
		reporter.CaptureError(err)
		return exitFailure
	}
	policy, err := cfg.RetryPolicy()
	if err != nil {
		logger.Error().Err(err).Msg("Invalid retry policy")
		reporter.CaptureError(err)
		return exitFailure
	}

	logger.Info().
		Str("profile", j.Name).
		Str("client", string(j.Client)).
		Int("start", j.Start).
		Int("end", j.End).
		Str("output_dir", j.OutputDir).
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Int("max_attempts", policy.MaxAttempts).
		Str("cache", cfg.Cache.Type).
		Msg("Application started with configuration")

	validators, err := newValidatorStore(cfg)
	if err != nil {
		logger.Error().Err(err).Str("cache", cfg.Cache.Type).Msg("Failed to create validator cache")
		reporter.CaptureError(err)
		return exitFailure
	}
	if validators != nil {
		defer func() {
			if err := validators.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close validator cache")
			}
		}()
	}

	if cfg.Metrics.Enabled {
		shutdown := metrics.Serve(metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port))
		defer shutdown()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := progress.NewConsole(stdout)
	fetcher := fetch.New(client.New(cfg, j.Client), fetch.Options{
		Policy:     policy,
		Validators: validators,
		Observer:   fetch.Observers{console, metrics.NewObserver(), reporter},
	})

	summary, runErr := fetcher.Run(ctx, j)
	console.Summary(j, summary)
	metrics.RecordSummary(j, summary)

	if cfg.Metrics.PushURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := metrics.Push(pushCtx, cfg.Metrics.PushURL, nil, runID); err != nil {
			logger.Warn().Err(err).Msg("Failed to push metrics")
		}
		cancel()
	}

	switch {
	case runErr == nil:
		return exitOK
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		logger.Warn().Err(runErr).Msg("Interrupted, files written so far are kept")
		return exitInterrupted
	default:
		logger.Error().Err(runErr).Msg("Batch aborted")
		reporter.CaptureError(runErr)
		return exitFailure
	}
}

// newValidatorStore opens the configured cache. It returns nil when conditional
// requests are disabled.
func newValidatorStore(cfg *config.Config) (*cache.ValidatorStore, error) {
	switch cfg.Cache.Type {
	case "":
		return nil, nil
	case "memory":
		// Every URL is requested once per run, so a per-process store never hits.
		return nil, &apperrors.ErrSetup{
			Step: "open validator cache",
			Err:  fmt.Errorf("cache type %q does not outlive the process, use %q for conditional requests", cfg.Cache.Type, "redis"),
		}
	}
	c, err := cache.New(cfg.Cache.Type, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           cfg.CacheTTL(),
		Logger:        cache.NewZerologLogger(config.GetLogger()),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         "validators",
	})
	if err != nil {
		return nil, err
	}
	return cache.NewValidatorStore(c), nil
}

// newRunID returns a time-ordered identifier for the run.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

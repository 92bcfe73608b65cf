package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/sundayezeilo/linkbatch/internal/config"
	"github.com/sundayezeilo/linkbatch/internal/errx"
	"github.com/sundayezeilo/linkbatch/internal/idgen"
	"github.com/sundayezeilo/linkbatch/internal/linkfile"
	"github.com/sundayezeilo/linkbatch/internal/linko"
	"github.com/sundayezeilo/linkbatch/internal/shortener"
)

// App holds the application dependencies and configuration.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	RunID     string
	Processor *shortener.Processor
	Writer    *linkfile.Writer
}

// Summary describes a finished run.
type Summary struct {
	RunID       string
	Records     int
	Successes   int
	Failures    int
	Pending     int
	Interrupted bool
	WriteErrors []error
}

// Option customizes App construction. Used by tests to replace the
// network and the clock.
type Option func(*options)

type options struct {
	transport http.RoundTripper
	waiter    shortener.Waiter
	ids       idgen.Generator
}

// WithTransport sets the HTTP transport of the shortening client.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithWaiter replaces the cooldown waiter.
func WithWaiter(w shortener.Waiter) Option {
	return func(o *options) { o.waiter = w }
}

// WithIDGenerator replaces the run and request ID generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(o *options) { o.ids = g }
}

// New loads the environment and configuration and wires an App.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(os.Stdout, cfg.App.LogLevel, cfg.App.LogFormat)

	return NewWithConfig(ctx, cfg, logger)
}

// NewWithConfig wires an App from an already loaded configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	const op = "app.New"

	if cfg == nil {
		return nil, errx.E(op, errx.Config, errors.New("config cannot be nil"))
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	o := &options{ids: idgen.NewV7()}
	for _, opt := range opts {
		opt(o)
	}

	runID := idgen.MustNewID(o.ids)
	logger = logger.With("run_id", runID)

	logger.InfoContext(ctx, "starting application",
		"env", cfg.App.Environment,
		"input", cfg.Files.Input,
		"api_url", cfg.API.URL,
	)

	client, err := linko.New(linko.Options{
		APIKey:    cfg.API.Key,
		URL:       cfg.API.URL,
		Timeout:   cfg.API.Timeout,
		Transport: o.transport,
		IDs:       o.ids,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	processor, err := shortener.NewProcessor(client, &shortener.ProcessorConfig{
		BatchSize: cfg.Batch.Size,
		Cooldown:  cfg.Batch.Cooldown,
		Waiter:    o.waiter,
		Pacer:     shortener.NewPacer(cfg.Batch.Pace),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "application initialized",
		"batch_size", cfg.Batch.Size,
		"cooldown", cfg.Batch.Cooldown,
		"pace", cfg.Batch.Pace,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		RunID:     runID,
		Processor: processor,
		Writer:    linkfile.NewWriter(nil),
	}, nil
}

// Run reads the input file, shortens every link and writes both result
// files. Only an unreadable input file is returned as an error; remote
// failures, output failures and interruption are reported in the Summary.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	files := a.Config.Files
	summary := &Summary{RunID: a.RunID}

	a.Logger.InfoContext(ctx, "reading input", "file", files.Input)

	records, err := linkfile.ReadFile(files.Input)
	if err != nil {
		return nil, err
	}
	summary.Records = len(records)

	if len(records) == 0 {
		a.Logger.WarnContext(ctx, "no links found in input file", "file", files.Input)
		return summary, nil
	}

	a.Logger.InfoContext(ctx, "links found", "count", len(records))

	report, runErr := a.Processor.Run(ctx, records)
	if runErr != nil {
		summary.Interrupted = true
		a.Logger.WarnContext(ctx, "run interrupted, saving partial results",
			"error", runErr,
			"pending", len(report.Pending),
		)
	}

	summary.Successes = len(report.Successes)
	summary.Failures = len(report.Failures)
	summary.Pending = len(report.Pending)

	a.Logger.InfoContext(ctx, "processing finished, saving results")
	summary.WriteErrors = a.save(ctx, report)

	a.Logger.InfoContext(ctx, "summary",
		"records", summary.Records,
		"succeeded", summary.Successes,
		"failed", summary.Failures,
		"pending", summary.Pending,
		"success_file", files.Success,
		"failed_file", files.Failed,
	)

	return summary, nil
}

// save writes both partitions. A failure to write one file does not
// prevent writing the other; errors are logged and returned.
func (a *App) save(ctx context.Context, report shortener.Report) []error {
	files := a.Config.Files
	var errs []error

	if len(report.Successes) > 0 {
		if err := a.Writer.WriteSuccesses(files.Success, report.Successes); err != nil {
			a.Logger.ErrorContext(ctx, "failed to save successful links", "file", files.Success, "error", err)
			errs = append(errs, err)
		} else {
			a.Logger.InfoContext(ctx, "successful links saved", "count", len(report.Successes), "file", files.Success)
		}
	} else {
		a.Logger.WarnContext(ctx, "no links were shortened")
	}

	retry := report.Retry()
	if len(retry) > 0 {
		if err := a.Writer.WriteRetry(files.Failed, retry); err != nil {
			a.Logger.ErrorContext(ctx, "failed to save links to retry", "file", files.Failed, "error", err)
			errs = append(errs, err)
		} else {
			a.Logger.WarnContext(ctx, "links to retry saved", "count", len(retry), "file", files.Failed)
		}
	} else {
		a.Logger.InfoContext(ctx, "all links processed without errors")
	}

	return errs
}

// Shutdown releases resources held by the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")
	http.DefaultClient.CloseIdleConnections()
	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level and format.
func setupLogger(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

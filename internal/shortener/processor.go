package shortener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sundayezeilo/linkbatch/internal/errx"
	"github.com/sundayezeilo/linkbatch/internal/httpx"
)

const (
	DefaultBatchSize = 5
	DefaultCooldown  = 60 * time.Second
)

// ProcessorConfig holds configuration for the Processor.
type ProcessorConfig struct {
	BatchSize int           // requests per batch; a cooldown precedes every following batch
	Cooldown  time.Duration // wait at batch boundaries and after each failed request
	Waiter    Waiter        // default: real timer
	Pacer     Pacer         // optional extra spacing between requests
	Logger    *slog.Logger  // default: discard
}

// Processor shortens records one at a time, throttling between batches
// and after failures. It is not safe for concurrent use.
type Processor struct {
	client    Client
	batchSize int
	cooldown  time.Duration
	waiter    Waiter
	pacer     Pacer
	logger    *slog.Logger
}

// NewProcessor creates a Processor. A nil config selects the defaults
// (batches of 5, 60s cooldown).
func NewProcessor(client Client, config *ProcessorConfig) (*Processor, error) {
	const op = "shortener.NewProcessor"

	if client == nil {
		return nil, errx.E(op, errx.Config, errors.New("client cannot be nil"))
	}
	if config == nil {
		config = &ProcessorConfig{BatchSize: DefaultBatchSize, Cooldown: DefaultCooldown}
	}
	if config.BatchSize <= 0 {
		return nil, errx.E(op, errx.Config, fmt.Errorf("batch size must be positive, got %d", config.BatchSize))
	}
	if config.Cooldown < 0 {
		return nil, errx.E(op, errx.Config, fmt.Errorf("cooldown cannot be negative, got %s", config.Cooldown))
	}

	waiter := config.Waiter
	if waiter == nil {
		waiter = NewSleepWaiter()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Processor{
		client:    client,
		batchSize: config.BatchSize,
		cooldown:  config.Cooldown,
		waiter:    waiter,
		pacer:     config.Pacer,
		logger:    logger,
	}, nil
}

// Run shortens every record in order. Per-record failures never stop the
// run; they land in Report.Failures. The only error returned is
// errx.Canceled when ctx is done, together with the partial report.
func (p *Processor) Run(ctx context.Context, records []LinkRecord) (Report, error) {
	const op = "shortener.Processor.Run"

	report := Report{}
	total := len(records)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			report.Pending = append(report.Pending, records[i:]...)
			return report, errx.E(op, errx.Canceled, err)
		}

		if report.Requests > 0 && report.Requests%p.batchSize == 0 {
			p.logger.InfoContext(ctx, "batch limit reached, cooling down",
				"batch_size", p.batchSize,
				"cooldown", p.cooldown,
			)
			if err := p.wait(ctx, &report); err != nil {
				report.Pending = append(report.Pending, records[i:]...)
				return report, errx.E(op, errx.Canceled, err)
			}
		}

		if p.pacer != nil {
			if err := p.pacer.Wait(ctx); err != nil {
				report.Pending = append(report.Pending, records[i:]...)
				return report, errx.E(op, errx.Canceled, err)
			}
		}

		p.logger.InfoContext(ctx, "processing link",
			"index", i+1,
			"total", total,
			"identifier", rec.Identifier,
		)

		outcome := p.shorten(ctx, rec)
		report.Requests++

		if outcome.Status == Succeeded {
			report.Successes = append(report.Successes, outcome)
			p.logger.InfoContext(ctx, "link shortened",
				"identifier", rec.Identifier,
				"short_url", outcome.ShortURL,
			)
			continue
		}

		report.Failures = append(report.Failures, outcome)
		kind := errx.KindOf(outcome.Err)
		p.logger.WarnContext(ctx, "link failed, kept for retry",
			"identifier", rec.Identifier,
			"cause", httpx.KindToCode(kind),
			"error", outcome.Err,
		)

		if kind == errx.Canceled {
			continue // the ctx check at the top of the loop ends the run
		}

		// Cool down after every failure, not only rate limiting.
		p.logger.InfoContext(ctx, "request failed, cooling down", "cooldown", p.cooldown)
		if err := p.wait(ctx, &report); err != nil {
			report.Pending = append(report.Pending, records[i+1:]...)
			return report, errx.E(op, errx.Canceled, err)
		}
	}

	return report, nil
}

func (p *Processor) shorten(ctx context.Context, rec LinkRecord) (out Outcome) {
	const op = "shortener.Processor.shorten"

	defer func() {
		if r := recover(); r != nil {
			out = Failure(rec, errx.E(op, errx.Unknown, fmt.Errorf("client panic: %v", r)))
		}
	}()

	shortURL, err := p.client.Shorten(ctx, rec.LongURL)
	if err != nil {
		return Failure(rec, err)
	}
	if shortURL == "" {
		return Failure(rec, errx.E(op, errx.Protocol, errors.New("client returned an empty short url")))
	}
	return Success(rec, shortURL)
}

func (p *Processor) wait(ctx context.Context, report *Report) error {
	report.Cooldowns++
	if err := p.waiter.Wait(ctx, p.cooldown); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "cooldown finished")
	return nil
}

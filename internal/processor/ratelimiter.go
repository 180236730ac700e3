package processor

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/rozpoctar/boq-classifier/internal/classifier"
	"github.com/rozpoctar/boq-classifier/internal/domain"
)

// defaultRPS is the request rate when none is configured.
const defaultRPS = 100

// RateLimiter provides rate limiting for operations
type RateLimiter struct {
	limiter *rate.Limiter
	logger  Logger
}

// NewRateLimiter creates a new rate limiter
// rps: requests per second
// burst: maximum burst size
func NewRateLimiter(rps, burst int, logger Logger) *RateLimiter {
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst <= 0 {
		burst = rps
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Wait waits until rate limit allows the operation
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("Rate limiter wait failed", "error", err)
		return err
	}
	return nil
}

// Allow checks if an operation is allowed without waiting
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// SetLimit updates the rate limit
func (r *RateLimiter) SetLimit(rps int) {
	r.limiter.SetLimit(rate.Limit(rps))
	r.logger.Info("Rate limit updated", "new_rps", rps)
}

// SetBurst updates the burst size
func (r *RateLimiter) SetBurst(burst int) {
	r.limiter.SetBurst(burst)
	r.logger.Info("Burst size updated", "new_burst", burst)
}

// RateLimitedProcessor gates batch classification behind a request rate
// limit so a burst of large documents cannot starve the service.
type RateLimitedProcessor struct {
	processor *BatchProcessor
	limiter   *RateLimiter
	logger    Logger
}

// NewRateLimitedProcessor creates a processor with rate limiting.
func NewRateLimitedProcessor(processor *BatchProcessor, rps int, logger Logger) *RateLimitedProcessor {
	return &RateLimitedProcessor{
		processor: processor,
		limiter:   NewRateLimiter(rps, rps, logger),
		logger:    logger,
	}
}

// Process waits for the rate limit and runs the batch.
func (r *RateLimitedProcessor) Process(ctx context.Context, items []*domain.Item, opts classifier.ApplyOptions) (*ProcessResult, error) {
	if !r.limiter.Allow() {
		if r.processor.telemetry != nil {
			r.processor.telemetry.IncrementThrottled()
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return r.processor.Process(ctx, items, opts)
}

// Limiter returns the underlying rate limiter.
func (r *RateLimitedProcessor) Limiter() *RateLimiter {
	return r.limiter
}

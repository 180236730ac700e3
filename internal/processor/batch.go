// Package processor runs full-document classification: the sequential
// row-role pass followed by concurrent work-group scoring.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/rozpoctar/boq-classifier/internal/classifier"
	"github.com/rozpoctar/boq-classifier/internal/domain"
	"github.com/rozpoctar/boq-classifier/internal/telemetry"
)

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// defaultConcurrency is the worker count when none is configured.
const defaultConcurrency = 10

// ProcessResult holds the outcome of one full classification run.
type ProcessResult struct {
	Items    []*domain.Item      `json:"items"`
	RowStats *domain.RowStats    `json:"row_stats"`
	Groups   *domain.ApplyResult `json:"groups"`
}

// BatchProcessor chains the row-role pass and the work-group pass. The
// row pass is inherently sequential (line numbering and parent links depend
// on row order); group scoring of the resulting main items is spread over a
// worker pool.
type BatchProcessor struct {
	rows         *classifier.RowClassifier
	orchestrator *classifier.Orchestrator
	concurrency  int
	telemetry    *telemetry.Provider
	logger       Logger
}

// NewBatchProcessor creates a new batch processor. telemetry may be nil.
func NewBatchProcessor(
	rows *classifier.RowClassifier,
	orchestrator *classifier.Orchestrator,
	concurrency int,
	tel *telemetry.Provider,
	logger Logger,
) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &BatchProcessor{
		rows:         rows,
		orchestrator: orchestrator,
		concurrency:  concurrency,
		telemetry:    tel,
		logger:       logger,
	}
}

// Process classifies a whole document: row roles first, then work groups for
// the main items that emerged. opts controls the group pass.
func (b *BatchProcessor) Process(ctx context.Context, items []*domain.Item, opts classifier.ApplyOptions) (*ProcessResult, error) {
	if len(items) == 0 {
		return &ProcessResult{
			Items:    []*domain.Item{},
			RowStats: &domain.RowStats{},
			Groups:   &domain.ApplyResult{ByGroup: map[domain.WorkGroup]int{}},
		}, nil
	}

	b.logger.Info("Starting batch processing",
		"batch_size", len(items),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()

	sorted, rowStats := b.rows.ClassifyRows(items)
	rowPassDuration := time.Since(startTime)

	scoreStart := time.Now()
	groups := b.applyConcurrent(ctx, sorted, opts)
	scoreDuration := time.Since(scoreStart)

	duration := time.Since(startTime)

	if b.telemetry != nil {
		b.telemetry.RecordBatchSize(len(items))
		b.telemetry.RecordScoring(ctx, scoreDuration, groups.Unclassified)
		b.telemetry.RecordRowPass(ctx, rowPassDuration, map[string]int{
			"main":        rowStats.MainCount,
			"subordinate": rowStats.SubordinateCount,
			"section":     rowStats.SectionCount,
			"unknown":     rowStats.UnknownCount,
		})
		for group, count := range groups.ByGroup {
			for i := 0; i < count; i++ {
				b.telemetry.RecordGroupAssigned(ctx, string(group))
			}
		}
	}

	b.logger.Info("Batch processing complete",
		"total", len(items),
		"main", rowStats.MainCount,
		"classified", groups.Classified,
		"unclassified", groups.Unclassified,
		"duration_ms", duration.Milliseconds(),
	)

	return &ProcessResult{
		Items:    sorted,
		RowStats: rowStats,
		Groups:   groups,
	}, nil
}

// applyConcurrent shards the items across workers and merges the per-shard
// apply results. Shards are disjoint, so the item mutation is race-free; the
// scorer itself is safe for concurrent use.
func (b *BatchProcessor) applyConcurrent(ctx context.Context, items []*domain.Item, opts classifier.ApplyOptions) *domain.ApplyResult {
	workers := b.concurrency
	if workers > len(items) {
		workers = len(items)
	}
	if workers <= 1 {
		return b.orchestrator.Apply(ctx, items, opts)
	}

	if b.telemetry != nil {
		b.telemetry.SetActiveWorkers(workers)
		defer b.telemetry.SetActiveWorkers(0)
	}

	jobs := make(chan []*domain.Item, workers)
	results := make(chan *domain.ApplyResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			b.logger.Debug("Worker started", "worker_id", id)
			for shard := range jobs {
				select {
				case <-ctx.Done():
					b.logger.Warn("Worker stopping due to context cancellation", "worker_id", id)
					return
				default:
				}
				results <- b.orchestrator.Apply(ctx, shard, opts)
			}
		}(i)
	}

	shardSize := (len(items) + workers - 1) / workers
	for start := 0; start < len(items); start += shardSize {
		end := start + shardSize
		if end > len(items) {
			end = len(items)
		}
		jobs <- items[start:end]
	}
	close(jobs)

	wg.Wait()
	close(results)

	merged := &domain.ApplyResult{ByGroup: make(map[domain.WorkGroup]int)}
	for r := range results {
		merged.Total += r.Total
		merged.Classified += r.Classified
		merged.Unclassified += r.Unclassified
		merged.AlreadySet += r.AlreadySet
		for group, count := range r.ByGroup {
			merged.ByGroup[group] += count
		}
	}
	return merged
}

// Concurrency returns the configured worker count.
func (b *BatchProcessor) Concurrency() int {
	return b.concurrency
}

package classifier

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rozpoctar/boq-classifier/internal/domain"
)

// DefaultSuggestThreshold filters suggestion candidates for human review.
const DefaultSuggestThreshold = 50

// Orchestrator bulk-applies the work-group scorer to the main items
// produced by the row-role pass, and exposes read-only suggestions and
// statistics. Only main-role items are eligible for group classification.
type Orchestrator struct {
	scorer *WorkGroupScorer
	tracer trace.Tracer
	logger Logger
}

// ApplyOptions controls a bulk classification run.
type ApplyOptions struct {
	// Overwrite replaces an already assigned skupina.
	Overwrite bool
	// MinConfidence (0-100) is the lowest suggestion confidence committed.
	MinConfidence int
}

// NewOrchestrator creates an orchestrator. tracer and logger may be nil.
func NewOrchestrator(scorer *WorkGroupScorer, tracer trace.Tracer, logger Logger) *Orchestrator {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Orchestrator{scorer: scorer, tracer: tracer, logger: logger}
}

// Apply scores every main item and commits the winning group to
// Skupina/SkupinaSuggested when its confidence reaches opts.MinConfidence.
// Items with Skupina already set are skipped unless opts.Overwrite is set.
func (o *Orchestrator) Apply(ctx context.Context, items []*domain.Item, opts ApplyOptions) *domain.ApplyResult {
	if o.tracer != nil {
		_, span := o.tracer.Start(ctx, "orchestrator.Apply",
			trace.WithAttributes(attribute.Int("items", len(items))))
		defer span.End()
	}

	result := &domain.ApplyResult{ByGroup: make(map[domain.WorkGroup]int)}

	for _, item := range items {
		if item.RowRole != domain.RowRoleMain {
			continue
		}
		result.Total++

		if item.Skupina != nil && !opts.Overwrite {
			result.AlreadySet++
			continue
		}

		score := o.scorer.Score(item.PopisFull, item.Unit())
		if len(score.Candidates) == 0 || score.Candidates[0].Confidence < opts.MinConfidence {
			result.Unclassified++
			continue
		}

		best := score.Candidates[0].Group
		item.Skupina = &best
		item.SkupinaSuggested = &best
		result.Classified++
		result.ByGroup[best]++
	}

	o.logger.Info("bulk work group classification complete",
		"total", result.Total,
		"classified", result.Classified,
		"unclassified", result.Unclassified,
		"already_set", result.AlreadySet,
	)

	return result
}

// Suggest returns, for every main item still lacking a skupina, its ranked
// candidates filtered to the confidence threshold (DefaultSuggestThreshold
// when threshold <= 0). Suggest never mutates the items.
func (o *Orchestrator) Suggest(ctx context.Context, items []*domain.Item, threshold int) []domain.Suggestion {
	if o.tracer != nil {
		_, span := o.tracer.Start(ctx, "orchestrator.Suggest")
		defer span.End()
	}

	if threshold <= 0 {
		threshold = DefaultSuggestThreshold
	}

	suggestions := make([]domain.Suggestion, 0)
	for _, item := range items {
		if item.RowRole != domain.RowRoleMain || item.Skupina != nil {
			continue
		}

		score := o.scorer.Score(item.PopisFull, item.Unit())
		filtered := make([]domain.GroupCandidate, 0, len(score.Candidates))
		for _, c := range score.Candidates {
			if c.Confidence >= threshold {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) == 0 {
			continue
		}

		suggestions = append(suggestions, domain.Suggestion{
			ItemID:     item.ID,
			Popis:      item.Popis,
			Candidates: filtered,
		})
	}

	return suggestions
}

// Stats computes the classification rate and per-group distribution of the
// main items in the collection. An empty collection yields a zero-valued
// result. Stats is read-only and idempotent.
func (o *Orchestrator) Stats(items []*domain.Item) *domain.StatsResult {
	result := &domain.StatsResult{}

	counts := make(map[domain.WorkGroup]int)
	for _, item := range items {
		if item.RowRole != domain.RowRoleMain {
			continue
		}
		result.Total++
		if item.Skupina != nil {
			result.Classified++
			counts[*item.Skupina]++
		}
	}

	if result.Total > 0 {
		result.Rate = float64(result.Classified) / float64(result.Total) * 100
	}

	result.Groups = make([]domain.GroupStat, 0, len(counts))
	for _, group := range domain.AllWorkGroups {
		count, ok := counts[group]
		if !ok {
			continue
		}
		stat := domain.GroupStat{Group: group, Count: count}
		if result.Total > 0 {
			stat.Percent = float64(count) / float64(result.Total) * 100
		}
		result.Groups = append(result.Groups, stat)
	}

	return result
}

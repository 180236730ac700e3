package classifier

import (
	"math"
	"sort"

	"github.com/rozpoctar/boq-classifier/internal/domain"
	"github.com/rozpoctar/boq-classifier/internal/textnorm"
)

// Scoring constants.
const (
	includeWeight     = 1.0
	excludeWeight     = -2.0
	unitBoost         = 0.5
	absoluteBonus     = 2.0 // per conflicting group, rules at AbsolutePriority and above
	normalBonus       = 0.3 // per conflicting group, everyone else
	confidenceDivisor = 2.0
	confidenceScale   = 100
	maxEvidence       = 4
)

// WorkGroupScorer maps a normalized item description and unit to the
// best-fitting work group. Scoring is a pure function of
// (text, unit, rule table): identical inputs always produce identical
// outputs, so calls are safe to run concurrently or memoize.
type WorkGroupScorer struct {
	engine *RuleEngine
	logger Logger
}

// NewWorkGroupScorer creates a scorer over the given rule table.
// logger may be nil.
func NewWorkGroupScorer(rules []domain.WorkGroupRule, logger Logger) *WorkGroupScorer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &WorkGroupScorer{
		engine: NewRuleEngine(rules),
		logger: logger,
	}
}

// UpdateRules hot-swaps the rule table.
func (s *WorkGroupScorer) UpdateRules(rules []domain.WorkGroupRule) {
	s.engine.UpdateRules(rules)
	s.logger.Info("work group rules updated", "count", s.engine.RuleCount())
}

// Rules returns the enabled rules in declaration order.
func (s *WorkGroupScorer) Rules() []domain.WorkGroupRule {
	return s.engine.Rules()
}

// Score returns the best-fitting group and the full ranked candidate list
// for an item description. The text is normalized (diacritics stripped,
// lowercased) before matching, so raw spreadsheet text is fine. Best is nil
// when no rule scores above zero; scoring never fails.
func (s *WorkGroupScorer) Score(text, unit string) domain.ScoreResult {
	rules, hits := s.engine.snapshot(textnorm.Normalize(text))
	normUnit := textnorm.NormalizeUnit(unit)

	// First pass: raw scores per rule. The unit boost rewards a unit that
	// corroborates a keyword match; a unit alone never scores.
	raw := make([]float64, len(rules))
	for i := range rules {
		h := hits[i]
		if h == nil || len(h.include) == 0 {
			continue
		}
		raw[i] = includeWeight*float64(len(h.include)) +
			excludeWeight*float64(len(h.exclude))
		if normUnit != "" && containsUnit(rules[i].BoostUnits, normUnit) {
			raw[i] += unitBoost
		}
	}

	// Per-group raw score for conflict detection; one group can have
	// several rules when the table comes from the rule store.
	groupRaw := make(map[domain.WorkGroup]float64, len(rules))
	for i := range rules {
		if raw[i] > groupRaw[rules[i].Group] {
			groupRaw[rules[i].Group] = raw[i]
		}
	}

	// Second pass: priority-over bonuses resolve conflicts between groups
	// that both matched.
	final := make([]float64, len(rules))
	copy(final, raw)
	for i := range rules {
		if raw[i] <= 0 || len(rules[i].PriorityOver) == 0 {
			continue
		}
		bonus := normalBonus
		if rules[i].Absolute() {
			bonus = absoluteBonus
		}
		for _, target := range rules[i].PriorityOver {
			if groupRaw[target] > 0 {
				final[i] += bonus
			}
		}
	}

	// Winner: the strictly highest positive score; ties resolve to the
	// first-declared rule.
	bestIdx := -1
	for i := range rules {
		if final[i] <= 0 {
			continue
		}
		if bestIdx == -1 || final[i] > final[bestIdx] {
			bestIdx = i
		}
	}

	candidates := make([]domain.GroupCandidate, 0, len(rules))
	for i := range rules {
		if final[i] <= 0 {
			continue
		}
		candidates = append(candidates, domain.GroupCandidate{
			Group:      rules[i].Group,
			Score:      final[i],
			Confidence: scoreConfidence(final[i]),
			Evidence:   matchedEvidence(&rules[i], hits[i]),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	result := domain.ScoreResult{Candidates: candidates}
	if bestIdx >= 0 {
		group := rules[bestIdx].Group
		result.Best = &group
	}
	return result
}

// scoreConfidence converts a final score to a 0-100 confidence.
func scoreConfidence(score float64) int {
	c := int(math.Round(score / confidenceDivisor * confidenceScale))
	if c > confidenceScale {
		return confidenceScale
	}
	return c
}

// matchedEvidence lists the first matched include keywords in
// rule-declaration order, capped at maxEvidence.
func matchedEvidence(rule *domain.WorkGroupRule, h *ruleHits) []string {
	if h == nil || len(h.include) == 0 {
		return nil
	}
	evidence := make([]string, 0, maxEvidence)
	for idx, kw := range rule.Include {
		if !h.include[idx] {
			continue
		}
		evidence = append(evidence, textnorm.Normalize(kw))
		if len(evidence) == maxEvidence {
			break
		}
	}
	return evidence
}

func containsUnit(units []string, unit string) bool {
	for _, u := range units {
		if textnorm.NormalizeUnit(u) == unit {
			return true
		}
	}
	return false
}

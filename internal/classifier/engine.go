// Package classifier provides BOQ row-role and work-group classification.
// engine.go implements an Aho-Corasick keyword engine so that one pass over
// the description finds every include and exclude keyword of every rule.
package classifier

import (
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/rozpoctar/boq-classifier/internal/domain"
	"github.com/rozpoctar/boq-classifier/internal/textnorm"
)

// keywordKind distinguishes include and exclude keyword mappings.
type keywordKind int

const (
	kindInclude keywordKind = iota
	kindExclude
)

type keywordMapping struct {
	ruleIdx    int
	keywordIdx int
	kind       keywordKind
}

// ruleHits accumulates which keywords of one rule were found in a text.
type ruleHits struct {
	include map[int]bool // include keyword index -> matched
	exclude map[int]bool // exclude keyword index -> matched
}

// RuleEngine matches every rule keyword against a normalized description in
// a single pass. Rules can be hot-swapped; Match is safe for concurrent use.
type RuleEngine struct {
	mu        sync.RWMutex
	rules     []domain.WorkGroupRule
	matcher   *ahocorasick.Matcher
	keywords  []string                    // unique normalized keywords, automaton order
	kwIndex   map[string]int              // keyword -> position in keywords
	kwToRules map[string][]keywordMapping // keyword -> rule mappings
}

// NewRuleEngine builds the automaton from the enabled rules.
func NewRuleEngine(rules []domain.WorkGroupRule) *RuleEngine {
	e := &RuleEngine{}
	// No lock needed in the constructor, the engine is not yet shared.
	e.setRulesLocked(rules)
	return e
}

// setRulesLocked stores the enabled rules and rebuilds the automaton.
// MUST be called with e.mu held (except from the constructor).
func (e *RuleEngine) setRulesLocked(rules []domain.WorkGroupRule) {
	enabled := make([]domain.WorkGroupRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}
	e.rules = enabled

	e.keywords = e.keywords[:0]
	e.kwIndex = make(map[string]int)
	e.kwToRules = make(map[string][]keywordMapping)

	add := func(ruleIdx, kwIdx int, kw string, kind keywordKind) {
		normalized := textnorm.Normalize(kw)
		if normalized == "" {
			return
		}
		if _, seen := e.kwIndex[normalized]; !seen {
			e.kwIndex[normalized] = len(e.keywords)
			e.keywords = append(e.keywords, normalized)
		}
		e.kwToRules[normalized] = append(e.kwToRules[normalized], keywordMapping{
			ruleIdx:    ruleIdx,
			keywordIdx: kwIdx,
			kind:       kind,
		})
	}

	for i := range e.rules {
		for k, kw := range e.rules[i].Include {
			add(i, k, kw, kindInclude)
		}
		for k, kw := range e.rules[i].Exclude {
			add(i, k, kw, kindExclude)
		}
	}

	if len(e.keywords) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(e.keywords)
	} else {
		e.matcher = nil
	}
}

// UpdateRules hot-swaps the rule table and rebuilds the automaton atomically.
func (e *RuleEngine) UpdateRules(rules []domain.WorkGroupRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setRulesLocked(rules)
}

// Rules returns a copy of the enabled rules in declaration order.
func (e *RuleEngine) Rules() []domain.WorkGroupRule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.WorkGroupRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// RuleCount returns the number of enabled rules.
func (e *RuleEngine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// KeywordCount returns the number of distinct keywords in the automaton.
func (e *RuleEngine) KeywordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.keywords)
}

// match finds, per rule index, the distinct include and exclude keywords
// present as substrings of the normalized text.
func (e *RuleEngine) match(text string) map[int]*ruleHits {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matchLocked(text)
}

// snapshot returns the enabled rules together with the keyword hits for the
// normalized text, taken from the same rule table. Hit indices stay aligned
// with the returned rules even when UpdateRules runs concurrently.
func (e *RuleEngine) snapshot(text string) ([]domain.WorkGroupRule, map[int]*ruleHits) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]domain.WorkGroupRule, len(e.rules))
	copy(rules, e.rules)
	return rules, e.matchLocked(text)
}

// matchLocked MUST be called with e.mu held.
func (e *RuleEngine) matchLocked(text string) map[int]*ruleHits {
	hits := make(map[int]*ruleHits)
	if e.matcher == nil || text == "" {
		return hits
	}

	for _, hitIdx := range e.matcher.Match([]byte(text)) {
		if hitIdx >= len(e.keywords) {
			continue
		}
		keyword := e.keywords[hitIdx]
		for _, m := range e.kwToRules[keyword] {
			h, ok := hits[m.ruleIdx]
			if !ok {
				h = &ruleHits{include: make(map[int]bool), exclude: make(map[int]bool)}
				hits[m.ruleIdx] = h
			}
			switch m.kind {
			case kindInclude:
				h.include[m.keywordIdx] = true
			case kindExclude:
				h.exclude[m.keywordIdx] = true
			}
		}
	}

	return hits
}

package api

import (
	"fmt"
	"time"

	"github.com/rozpoctar/boq-classifier/internal/domain"
)

// RuleRequest is the request body for creating or updating a rule.
type RuleRequest struct {
	WorkGroup    string   `json:"work_group"    binding:"required"`
	Include      []string `json:"include"       binding:"required,min=1"`
	Exclude      []string `json:"exclude"`
	BoostUnits   []string `json:"boost_units"`
	BasePriority int      `json:"base_priority"`
	PriorityOver []string `json:"priority_over"`
	Enabled      *bool    `json:"enabled"`
}

// RuleResponse is the API shape of a work-group rule.
type RuleResponse struct {
	ID           int       `json:"id"`
	WorkGroup    string    `json:"work_group"`
	Include      []string  `json:"include"`
	Exclude      []string  `json:"exclude,omitempty"`
	BoostUnits   []string  `json:"boost_units,omitempty"`
	BasePriority int       `json:"base_priority"`
	PriorityOver []string  `json:"priority_over,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RulesListResponse wraps the rule list.
type RulesListResponse struct {
	Rules []RuleResponse `json:"rules"`
	Total int            `json:"total"`
}

// toDomain validates the request and converts it to a domain rule.
func (r *RuleRequest) toDomain() (*domain.WorkGroupRule, error) {
	group := domain.WorkGroup(r.WorkGroup)
	if !group.Valid() {
		return nil, fmt.Errorf("unknown work group %q", r.WorkGroup)
	}

	over := make([]domain.WorkGroup, 0, len(r.PriorityOver))
	for _, g := range r.PriorityOver {
		wg := domain.WorkGroup(g)
		if !wg.Valid() {
			return nil, fmt.Errorf("unknown work group %q in priority_over", g)
		}
		over = append(over, wg)
	}

	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}

	return &domain.WorkGroupRule{
		Group:        group,
		Include:      r.Include,
		Exclude:      r.Exclude,
		BoostUnits:   r.BoostUnits,
		BasePriority: r.BasePriority,
		PriorityOver: over,
		Enabled:      enabled,
	}, nil
}

func toRuleResponse(rule *domain.WorkGroupRule) RuleResponse {
	over := make([]string, 0, len(rule.PriorityOver))
	for _, g := range rule.PriorityOver {
		over = append(over, string(g))
	}

	return RuleResponse{
		ID:           rule.ID,
		WorkGroup:    string(rule.Group),
		Include:      rule.Include,
		Exclude:      rule.Exclude,
		BoostUnits:   rule.BoostUnits,
		BasePriority: rule.BasePriority,
		PriorityOver: over,
		Enabled:      rule.Enabled,
		CreatedAt:    rule.CreatedAt,
		UpdatedAt:    rule.UpdatedAt,
	}
}

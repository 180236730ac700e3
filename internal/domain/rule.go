package domain

import "time"

// AbsolutePriority is the base priority at and above which a rule wins any
// conflict with the groups it lists in PriorityOver, regardless of how many
// keywords the losing rule matched.
const AbsolutePriority = 200

// WorkGroupRule is one scoring rule of the work-group classifier. Keywords
// are stored diacritics-stripped and lowercased; matching is plain substring
// matching against the normalized item description.
type WorkGroupRule struct {
	ID           int         `db:"id"            json:"id"`
	Group        WorkGroup   `db:"work_group"    json:"work_group"`
	Include      []string    `db:"-"             json:"include"`
	Exclude      []string    `db:"-"             json:"exclude,omitempty"`
	BoostUnits   []string    `db:"-"             json:"boost_units,omitempty"`
	BasePriority int         `db:"base_priority" json:"base_priority"`
	PriorityOver []WorkGroup `db:"-"             json:"priority_over,omitempty"`
	Enabled      bool        `db:"enabled"       json:"enabled"`
	CreatedAt    time.Time   `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"    json:"updated_at"`
}

// Absolute reports whether the rule carries absolute conflict priority.
func (r *WorkGroupRule) Absolute() bool {
	return r.BasePriority >= AbsolutePriority
}

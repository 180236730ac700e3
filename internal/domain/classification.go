package domain

// RowStats aggregates the outcome of one row-role classification pass.
type RowStats struct {
	Total            int `json:"total"`
	MainCount        int `json:"main_count"`
	SubordinateCount int `json:"subordinate_count"`
	SectionCount     int `json:"section_count"`
	UnknownCount     int `json:"unknown_count"`
	MaxLineNumber    int `json:"max_line_number"`
}

// GroupCandidate is one scored work-group candidate for an item.
type GroupCandidate struct {
	Group      WorkGroup `json:"work_group"`
	Score      float64   `json:"score"`
	Confidence int       `json:"confidence"` // 0-100
	Evidence   []string  `json:"evidence,omitempty"`
}

// ScoreResult is the outcome of scoring one description against the rule
// table. Best is nil when no rule scored above zero.
type ScoreResult struct {
	Best       *WorkGroup       `json:"best,omitempty"`
	Candidates []GroupCandidate `json:"candidates"`
}

// ApplyResult aggregates a bulk work-group classification run.
type ApplyResult struct {
	Total        int               `json:"total"`
	Classified   int               `json:"classified"`
	Unclassified int               `json:"unclassified"`
	AlreadySet   int               `json:"already_set"`
	ByGroup      map[WorkGroup]int `json:"by_group"`
}

// Suggestion carries the ranked candidates for one item lacking a group,
// intended for human review. Suggestions are never auto-applied.
type Suggestion struct {
	ItemID     string           `json:"item_id"`
	Popis      string           `json:"popis"`
	Candidates []GroupCandidate `json:"candidates"`
}

// GroupStat is the count and share of one work group in a collection.
type GroupStat struct {
	Group   WorkGroup `json:"work_group"`
	Count   int       `json:"count"`
	Percent float64   `json:"percent"`
}

// StatsResult is the read-only classification distribution of a collection.
type StatsResult struct {
	Total      int         `json:"total"`
	Classified int         `json:"classified"`
	Rate       float64     `json:"rate"` // percent of classified main items
	Groups     []GroupStat `json:"groups"`
}

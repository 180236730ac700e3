package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rozpoctar/boq-classifier/internal/domain"
)

// ErrRuleNotFound is returned when a rule id does not exist.
var ErrRuleNotFound = errors.New("rule not found")

// RulesRepository handles database operations for work-group rules.
// Keyword lists are stored JSON-encoded so the same schema works on both
// PostgreSQL and SQLite.
type RulesRepository struct {
	db *sqlx.DB
}

// NewRulesRepository creates a new rules repository.
func NewRulesRepository(db *sqlx.DB) *RulesRepository {
	return &RulesRepository{db: db}
}

// ruleRow is the flat database shape of a work-group rule.
type ruleRow struct {
	ID           int       `db:"id"`
	Group        string    `db:"work_group"`
	Include      string    `db:"include_keywords"`
	Exclude      string    `db:"exclude_keywords"`
	BoostUnits   string    `db:"boost_units"`
	BasePriority int       `db:"base_priority"`
	PriorityOver string    `db:"priority_over"`
	Enabled      bool      `db:"enabled"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS work_group_rules (
	id               SERIAL PRIMARY KEY,
	work_group       TEXT NOT NULL,
	include_keywords TEXT NOT NULL,
	exclude_keywords TEXT NOT NULL,
	boost_units      TEXT NOT NULL,
	base_priority    INTEGER NOT NULL,
	priority_over    TEXT NOT NULL,
	enabled          BOOLEAN NOT NULL DEFAULT TRUE,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
)`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS work_group_rules (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	work_group       TEXT NOT NULL,
	include_keywords TEXT NOT NULL,
	exclude_keywords TEXT NOT NULL,
	boost_units      TEXT NOT NULL,
	base_priority    INTEGER NOT NULL,
	priority_over    TEXT NOT NULL,
	enabled          BOOLEAN NOT NULL DEFAULT TRUE,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
)`

// EnsureSchema creates the rules table if it does not exist.
func (r *RulesRepository) EnsureSchema(ctx context.Context) error {
	schema := postgresSchema
	if r.db.DriverName() == "sqlite3" {
		schema = sqliteSchema
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create rules schema: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the given rules when the table holds none. Used at
// startup to load the built-in table into a fresh store.
func (r *RulesRepository) SeedIfEmpty(ctx context.Context, rules []domain.WorkGroupRule) error {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM work_group_rules"); err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range rules {
		rule := rules[i]
		if err := r.Create(ctx, &rule); err != nil {
			return fmt.Errorf("failed to seed rule for %s: %w", rule.Group, err)
		}
	}
	return nil
}

// Create inserts a new rule and fills its ID and timestamps.
func (r *RulesRepository) Create(ctx context.Context, rule *domain.WorkGroupRule) error {
	row, err := toRow(rule)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO work_group_rules (
			work_group, include_keywords, exclude_keywords, boost_units,
			base_priority, priority_over, enabled, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	if r.db.DriverName() == "postgres" {
		err = r.db.QueryRowContext(ctx, query+" RETURNING id",
			row.Group, row.Include, row.Exclude, row.BoostUnits,
			row.BasePriority, row.PriorityOver, row.Enabled, now, now,
		).Scan(&rule.ID)
		if err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, query,
		row.Group, row.Include, row.Exclude, row.BoostUnits,
		row.BasePriority, row.PriorityOver, row.Enabled, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read rule id: %w", err)
	}
	rule.ID = int(id)
	return nil
}

// GetByID retrieves a rule by its ID.
func (r *RulesRepository) GetByID(ctx context.Context, id int) (*domain.WorkGroupRule, error) {
	var row ruleRow
	query := r.db.Rebind(`
		SELECT id, work_group, include_keywords, exclude_keywords, boost_units,
		       base_priority, priority_over, enabled, created_at, updated_at
		FROM work_group_rules
		WHERE id = ?
	`)

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrRuleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return fromRow(&row)
}

// List retrieves all rules. When enabledOnly is set, disabled rules are
// filtered out. Order is stable: priority descending, then id.
func (r *RulesRepository) List(ctx context.Context, enabledOnly bool) ([]domain.WorkGroupRule, error) {
	query := `
		SELECT id, work_group, include_keywords, exclude_keywords, boost_units,
		       base_priority, priority_over, enabled, created_at, updated_at
		FROM work_group_rules
	`
	if enabledOnly {
		query += " WHERE enabled"
	}
	query += " ORDER BY base_priority DESC, id ASC"

	var rows []ruleRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	rules := make([]domain.WorkGroupRule, 0, len(rows))
	for i := range rows {
		rule, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

// Update replaces the stored rule with the given one, keyed by rule.ID.
func (r *RulesRepository) Update(ctx context.Context, rule *domain.WorkGroupRule) error {
	row, err := toRow(rule)
	if err != nil {
		return err
	}

	rule.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE work_group_rules
		SET work_group = ?, include_keywords = ?, exclude_keywords = ?,
		    boost_units = ?, base_priority = ?, priority_over = ?,
		    enabled = ?, updated_at = ?
		WHERE id = ?
	`)

	res, err := r.db.ExecContext(ctx, query,
		row.Group, row.Include, row.Exclude, row.BoostUnits,
		row.BasePriority, row.PriorityOver, row.Enabled, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, rule.ID)
	}
	return nil
}

// Delete removes a rule by ID.
func (r *RulesRepository) Delete(ctx context.Context, id int) error {
	query := r.db.Rebind("DELETE FROM work_group_rules WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, id)
	}
	return nil
}

func toRow(rule *domain.WorkGroupRule) (*ruleRow, error) {
	include, err := json.Marshal(emptyIfNil(rule.Include))
	if err != nil {
		return nil, fmt.Errorf("failed to encode include keywords: %w", err)
	}
	exclude, err := json.Marshal(emptyIfNil(rule.Exclude))
	if err != nil {
		return nil, fmt.Errorf("failed to encode exclude keywords: %w", err)
	}
	units, err := json.Marshal(emptyIfNil(rule.BoostUnits))
	if err != nil {
		return nil, fmt.Errorf("failed to encode boost units: %w", err)
	}
	over := rule.PriorityOver
	if over == nil {
		over = []domain.WorkGroup{}
	}
	overJSON, err := json.Marshal(over)
	if err != nil {
		return nil, fmt.Errorf("failed to encode priority_over: %w", err)
	}

	return &ruleRow{
		ID:           rule.ID,
		Group:        string(rule.Group),
		Include:      string(include),
		Exclude:      string(exclude),
		BoostUnits:   string(units),
		BasePriority: rule.BasePriority,
		PriorityOver: string(overJSON),
		Enabled:      rule.Enabled,
	}, nil
}

func fromRow(row *ruleRow) (*domain.WorkGroupRule, error) {
	rule := &domain.WorkGroupRule{
		ID:           row.ID,
		Group:        domain.WorkGroup(row.Group),
		BasePriority: row.BasePriority,
		Enabled:      row.Enabled,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}

	if err := json.Unmarshal([]byte(row.Include), &rule.Include); err != nil {
		return nil, fmt.Errorf("failed to decode include keywords of rule %d: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Exclude), &rule.Exclude); err != nil {
		return nil, fmt.Errorf("failed to decode exclude keywords of rule %d: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.BoostUnits), &rule.BoostUnits); err != nil {
		return nil, fmt.Errorf("failed to decode boost units of rule %d: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.PriorityOver), &rule.PriorityOver); err != nil {
		return nil, fmt.Errorf("failed to decode priority_over of rule %d: %w", row.ID, err)
	}

	return rule, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

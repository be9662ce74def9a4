package reconcile

import "enchlib/core/tables"

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionInsert appends a default row for an id missing from a table.
	ActionInsert ActionType = "insert"
	// ActionRemove deletes the rows of an id the registry no longer knows.
	ActionRemove ActionType = "remove"
)

// Action represents a planned mutation of one table row.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Table is the table the row belongs to.
	Table tables.Kind `json:"table"`

	// Key is the enchantment id.
	Key tables.ID `json:"key"`

	// Value is the raw value written for inserts.
	Value string `json:"value,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Plan contains the actions needed to bring the tables in line with the
// registry.
type Plan struct {
	// Actions contains planned mutation operations, grouped by id and then
	// by table.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// KnownIDs is the size of the registry id set.
	KnownIDs int `json:"known_ids"`

	// AddedIDs counts ids that are missing from at least one table.
	AddedIDs int `json:"added_ids"`

	// Inserts counts planned row inserts.
	Inserts int `json:"inserts"`

	// PrunedIDs counts ids planned for removal.
	PrunedIDs int `json:"pruned_ids"`

	// Removals counts planned row removals.
	Removals int `json:"removals"`
}

// Empty reports whether the plan has nothing to do.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}

// Options controls what a reconcile run plans and executes.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Prune plans removal of ids the registry does not know.
	Prune bool

	// Confirmed indicates the operator confirmed destructive actions.
	// Removals never execute without it; inserts do not need it.
	Confirmed bool
}

// Report is the outcome of executing a plan.
type Report struct {
	// AddedCount is the number of ids that received at least one row.
	AddedCount int `json:"added_count"`

	// Inserted is the number of rows appended.
	Inserted int `json:"inserted"`

	// RemovedCount is the number of ids whose rows were deleted.
	RemovedCount int `json:"removed_count"`

	// Removed is the number of rows deleted.
	Removed int `json:"removed"`

	// Skipped counts actions that were not executed: rows that appeared or
	// vanished since planning, or removals without confirmation.
	Skipped int `json:"skipped"`

	// DryRun is true when nothing was written.
	DryRun bool `json:"dry_run"`
}

// Pair is an incompatibility declared in one direction only: B is listed
// for A but A is not listed for B.
type Pair struct {
	A tables.ID `json:"a"`
	B tables.ID `json:"b"`
}

// ValidationReport compares the tables with the registry. Findings are data,
// not errors.
type ValidationReport struct {
	// Checked is the number of registry ids compared.
	Checked int `json:"checked"`

	// MissingInConfig lists registry ids with no availability row, sorted.
	MissingInConfig []tables.ID `json:"missing_in_config"`

	// ExtraInConfig lists availability rows the registry does not know, sorted.
	ExtraInConfig []tables.ID `json:"extra_in_config"`

	// AsymmetricPairs lists one-directional incompatibilities.
	AsymmetricPairs []Pair `json:"asymmetric_pairs"`
}

// Findings returns the total number of reported inconsistencies.
func (r *ValidationReport) Findings() int {
	return len(r.MissingInConfig) + len(r.ExtraInConfig) + len(r.AsymmetricPairs)
}

// Clean reports whether validation found nothing.
func (r *ValidationReport) Clean() bool {
	return r.Findings() == 0
}

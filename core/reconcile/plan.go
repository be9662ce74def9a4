package reconcile

import (
	"context"
	"fmt"

	"enchlib/core/filestore"
	"enchlib/core/tables"
)

// BuildPlan computes the actions that bring snap in line with ids. It does
// NOT execute them; use ApplyPlan for that.
//
// An id missing from any table gets a default row in every table that lacks
// it. With opts.Prune, ids present in the tables but unknown to the registry
// get a removal for every table that holds them. Ids are visited in sorted
// order so first-time file creation is deterministic.
func BuildPlan(snap *tables.Snapshot, ids tables.IDSet, opts Options) *Plan {
	plan := &Plan{Actions: []Action{}}
	plan.Summary.KnownIDs = len(ids)

	for _, id := range ids.Sorted() {
		missing := false
		for _, def := range tables.Definitions {
			if snap.Has(def.Kind, id) {
				continue
			}
			missing = true
			plan.Actions = append(plan.Actions, Action{
				Type:   ActionInsert,
				Table:  def.Kind,
				Key:    id,
				Value:  def.DefaultValue,
				Reason: "missing from " + def.File,
			})
			plan.Summary.Inserts++
		}
		if missing {
			plan.Summary.AddedIDs++
		}
	}

	if opts.Prune {
		for _, id := range snap.IDs() {
			if ids.Has(id) {
				continue
			}
			plan.Summary.PrunedIDs++
			for _, def := range tables.Definitions {
				if !snap.Has(def.Kind, id) {
					continue
				}
				plan.Actions = append(plan.Actions, Action{
					Type:   ActionRemove,
					Table:  def.Kind,
					Key:    id,
					Reason: "unknown to registry",
				})
				plan.Summary.Removals++
			}
		}
	}

	return plan
}

// ApplyPlan executes plan against store. Inserts run unless opts.DryRun;
// removals additionally require opts.Confirmed. Each table is written with
// one batched append or removal. Actions whose row already changed since
// planning are skipped, so applying a stale plan stays idempotent.
func ApplyPlan(ctx context.Context, store *tables.Store, plan *Plan, opts Options) (*Report, error) {
	report := &Report{DryRun: opts.DryRun}
	if opts.DryRun {
		report.Skipped = len(plan.Actions)
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Group actions by table for batch execution
	inserts := make(map[tables.Kind][]Action)
	removals := make(map[tables.Kind][]Action)
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionInsert:
			inserts[action.Table] = append(inserts[action.Table], action)
		case ActionRemove:
			if !opts.Confirmed {
				report.Skipped++
				continue
			}
			removals[action.Table] = append(removals[action.Table], action)
		}
	}
	if len(inserts) == 0 && len(removals) == 0 {
		return report, nil
	}

	added := make(tables.IDSet)
	removed := make(tables.IDSet)
	_, err := store.Mutate(func(files *filestore.Store, snap *tables.Snapshot) error {
		for _, def := range tables.Definitions {
			var batch []filestore.Entry
			for _, action := range inserts[def.Kind] {
				if snap.Has(def.Kind, action.Key) {
					report.Skipped++
					continue
				}
				batch = append(batch, filestore.Entry{Key: string(action.Key), Value: action.Value})
			}
			if len(batch) > 0 {
				if err := files.AppendEntries(def.File, batch); err != nil {
					return fmt.Errorf("failed to append defaults to %s: %w", def.File, err)
				}
				report.Inserted += len(batch)
				for _, e := range batch {
					added[tables.ID(e.Key)] = struct{}{}
				}
			}

			var keys []string
			for _, action := range removals[def.Kind] {
				if !snap.Has(def.Kind, action.Key) {
					report.Skipped++
					continue
				}
				keys = append(keys, string(action.Key))
			}
			if len(keys) > 0 {
				if err := files.RemoveEntries(def.File, keys); err != nil {
					return fmt.Errorf("failed to remove rows from %s: %w", def.File, err)
				}
				report.Removed += len(keys)
				for _, k := range keys {
					removed[tables.ID(k)] = struct{}{}
				}
			}
		}
		return nil
	})
	report.AddedCount = len(added)
	report.RemovedCount = len(removed)
	if err != nil {
		return report, err
	}
	return report, nil
}

// Reconcile adds default rows for every id in ids that is missing from any
// table. Running it twice with the same ids inserts nothing the second time.
func Reconcile(ctx context.Context, store *tables.Store, ids tables.IDSet) (*Report, error) {
	plan := BuildPlan(store.Snapshot(), ids, Options{})
	return ApplyPlan(ctx, store, plan, Options{})
}

package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"enchlib/core/filestore"
	"enchlib/core/registry"
	"enchlib/core/tables"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*tables.Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store := tables.NewStore(filestore.New(fsys, "/cfg", nil), nil)
	_, err := store.Load()
	require.NoError(t, err)
	return store, fsys
}

// renameFailFs fails every rename onto the named file.
type renameFailFs struct {
	afero.Fs
	name string
}

func (f *renameFailFs) Rename(oldname, newname string) error {
	if filepath.Base(newname) == f.name {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errors.New("disk full")}
	}
	return f.Fs.Rename(oldname, newname)
}

func readFile(t *testing.T, fsys afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, "/cfg/"+name)
	require.NoError(t, err)
	return string(data)
}

func TestReconcile_EmptyTablesScenario(t *testing.T) {
	store, _ := newStore(t)
	ids := tables.NewIDSet("m:a", "m:b")

	report, err := Reconcile(context.Background(), store, ids)
	require.NoError(t, err)
	assert.Equal(t, 2, report.AddedCount)
	assert.Equal(t, 12, report.Inserted)

	snap := store.Snapshot()
	for _, id := range []tables.ID{"m:a", "m:b"} {
		assert.True(t, snap.IsEnabled(id))
		assert.Equal(t, "common", snap.Rarity(id))
		_, ok := snap.MaxLevelOverride(id)
		assert.False(t, ok)
		assert.Empty(t, snap.CompatibilityGroups(id))
		assert.Empty(t, snap.Categories(id))
		assert.Empty(t, snap.IncompatibleWith(id))
		for _, def := range tables.Definitions {
			assert.True(t, snap.Has(def.Kind, id), "%s row for %s", def.Kind, id)
		}
	}

	v := Validate(snap, ids)
	assert.Empty(t, v.MissingInConfig)
	assert.Empty(t, v.ExtraInConfig)
	assert.True(t, v.Clean())
}

func TestReconcile_Idempotent(t *testing.T) {
	store, fsys := newStore(t)
	ids := tables.NewIDSet("m:c", "m:a", "m:b")

	_, err := Reconcile(context.Background(), store, ids)
	require.NoError(t, err)
	before := map[string]string{}
	for _, name := range tables.Files() {
		before[name] = readFile(t, fsys, name)
	}

	report, err := Reconcile(context.Background(), store, ids)
	require.NoError(t, err)
	assert.Equal(t, 0, report.AddedCount)
	assert.Equal(t, 0, report.Inserted)
	for _, name := range tables.Files() {
		assert.Equal(t, before[name], readFile(t, fsys, name), name)
	}

	assert.True(t, BuildPlan(store.Snapshot(), ids, Options{}).Empty())
}

func TestReconcile_Superset(t *testing.T) {
	sets := []tables.IDSet{
		tables.NewIDSet(),
		tables.NewIDSet("m:a"),
		tables.NewIDSet("m:a", "x:y", "minecraft:sharpness"),
	}
	for _, ids := range sets {
		store, _ := newStore(t)
		_, err := Reconcile(context.Background(), store, ids)
		require.NoError(t, err)

		keys := store.Snapshot().Keys(tables.KindAvailability)
		for id := range ids {
			assert.True(t, keys.Has(id))
		}
	}
}

func TestReconcile_PreservesUserEdits(t *testing.T) {
	store, fsys := newStore(t)
	require.NoError(t, afero.WriteFile(fsys, "/cfg/AviableEnch.config", []byte("# mine\nm:a=false\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/cfg/EnchRarity.config", []byte("m:a=legendary"), 0o644))
	_, err := store.Load()
	require.NoError(t, err)

	report, err := Reconcile(context.Background(), store, tables.NewIDSet("m:a", "m:b"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.AddedCount)

	assert.Equal(t, "# mine\nm:a=false\nm:b=true\n", readFile(t, fsys, "AviableEnch.config"))
	assert.Equal(t, "m:a=legendary\nm:b=common\n", readFile(t, fsys, "EnchRarity.config"))

	snap := store.Snapshot()
	assert.False(t, snap.IsEnabled("m:a"))
	assert.Equal(t, "legendary", snap.Rarity("m:a"))
}

func TestReconcile_FillsOnlyMissingTables(t *testing.T) {
	store, fsys := newStore(t)
	require.NoError(t, afero.WriteFile(fsys, "/cfg/AviableEnch.config", []byte("m:a=true\n"), 0o644))
	_, err := store.Load()
	require.NoError(t, err)

	plan := BuildPlan(store.Snapshot(), tables.NewIDSet("m:a"), Options{})
	assert.Equal(t, 1, plan.Summary.AddedIDs)
	assert.Equal(t, 5, plan.Summary.Inserts)
	for _, a := range plan.Actions {
		assert.NotEqual(t, tables.KindAvailability, a.Table)
	}
}

func TestApplyPlan_DryRun(t *testing.T) {
	store, fsys := newStore(t)
	plan := BuildPlan(store.Snapshot(), tables.NewIDSet("m:a"), Options{})

	report, err := ApplyPlan(context.Background(), store, plan, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 6, report.Skipped)

	exists, err := afero.Exists(fsys, "/cfg/AviableEnch.config")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestApplyPlan_StalePlanSkipsExistingRows(t *testing.T) {
	store, _ := newStore(t)
	plan := BuildPlan(store.Snapshot(), tables.NewIDSet("m:a"), Options{})

	require.NoError(t, store.SetEnabled("m:a", false))

	report, err := ApplyPlan(context.Background(), store, plan, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 5, report.Inserted)
	assert.False(t, store.Snapshot().IsEnabled("m:a"))
}

func TestApplyPlan_CancelledContext(t *testing.T) {
	store, _ := newStore(t)
	plan := BuildPlan(store.Snapshot(), tables.NewIDSet("m:a"), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ApplyPlan(ctx, store, plan, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyPlan_FailedWriteNotCounted(t *testing.T) {
	fsys := &renameFailFs{Fs: afero.NewMemMapFs(), name: "AviableEnch.config"}
	store := tables.NewStore(filestore.New(fsys, "/cfg", nil), nil)
	_, err := store.Load()
	require.NoError(t, err)

	plan := BuildPlan(store.Snapshot(), tables.NewIDSet("m:a", "m:b"), Options{})
	report, err := ApplyPlan(context.Background(), store, plan, Options{})
	require.Error(t, err)
	assert.Zero(t, report.AddedCount)
	assert.Zero(t, report.Inserted)
	assert.Empty(t, store.Snapshot().IDs())
}

func TestPrune(t *testing.T) {
	store, _ := newStore(t)
	_, err := Reconcile(context.Background(), store, tables.NewIDSet("m:a", "m:gone"))
	require.NoError(t, err)

	ids := tables.NewIDSet("m:a")
	plan := BuildPlan(store.Snapshot(), ids, Options{Prune: true})
	assert.Equal(t, 1, plan.Summary.PrunedIDs)
	assert.Equal(t, 6, plan.Summary.Removals)

	t.Run("Unconfirmed", func(t *testing.T) {
		report, err := ApplyPlan(context.Background(), store, plan, Options{Prune: true})
		require.NoError(t, err)
		assert.Equal(t, 0, report.Removed)
		assert.Equal(t, 6, report.Skipped)
		assert.True(t, store.Snapshot().Has(tables.KindAvailability, "m:gone"))
	})

	t.Run("Confirmed", func(t *testing.T) {
		report, err := ApplyPlan(context.Background(), store, plan, Options{Prune: true, Confirmed: true})
		require.NoError(t, err)
		assert.Equal(t, 1, report.RemovedCount)
		assert.Equal(t, 6, report.Removed)
		assert.Equal(t, []tables.ID{"m:a"}, store.Snapshot().IDs())
	})
}

func TestValidate(t *testing.T) {
	store, fsys := newStore(t)
	require.NoError(t, afero.WriteFile(fsys, "/cfg/AviableEnch.config", []byte("m:a=true\nm:b=true\nm:old=false\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/cfg/EnchUncompatibility.config",
		[]byte("m:a=m:b,m:a\nm:b=\nm:c=m:d\nm:d=m:c\n"), 0o644))
	_, err := store.Load()
	require.NoError(t, err)

	report := Validate(store.Snapshot(), tables.NewIDSet("m:a", "m:b", "m:new", "m:c", "m:d"))
	assert.Equal(t, []tables.ID{"m:c", "m:d", "m:new"}, report.MissingInConfig)
	assert.Equal(t, []tables.ID{"m:old"}, report.ExtraInConfig)
	assert.Equal(t, []Pair{{A: "m:a", B: "m:b"}}, report.AsymmetricPairs)
	assert.Equal(t, 5, report.Findings())
}

func TestFormat(t *testing.T) {
	clean := &ValidationReport{Checked: 3}
	assert.Equal(t, "Configuration matches the registry (3 enchantments checked).\n", Format(clean, true))

	report := &ValidationReport{
		Checked:         2,
		MissingInConfig: []tables.ID{"m:x"},
		ExtraInConfig:   []tables.ID{},
		AsymmetricPairs: []Pair{{A: "m:a", B: "m:b"}},
	}
	short := Format(report, false)
	assert.Contains(t, short, "1 missing in config, 0 unknown to registry, 1 one-way incompatibilities")
	assert.NotContains(t, short, "m:x")

	long := Format(report, true)
	assert.Contains(t, long, "Missing in config:\n  - m:x\n")
	assert.NotContains(t, long, "Unknown to registry:")
	assert.Contains(t, long, "m:a lists m:b, but not the reverse")
}

type recordingObserver struct {
	reports     []*Report
	validations []*ValidationReport
}

func (o *recordingObserver) ObserveReconcile(r *Report, _ error) { o.reports = append(o.reports, r) }
func (o *recordingObserver) ObserveValidation(r *ValidationReport) {
	o.validations = append(o.validations, r)
}

func TestEngine(t *testing.T) {
	store, _ := newStore(t)
	reg := registry.NewStatic("minecraft", map[string]int{"sharpness": 5, "mod:zap": 0})
	obs := &recordingObserver{}
	engine := NewEngine(store, reg, nil, obs)

	plan, report, err := engine.ReconcileAndApply(context.Background(), Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Summary.AddedIDs)
	assert.True(t, report.DryRun)
	assert.Empty(t, store.Snapshot().IDs())

	_, report, err = engine.ReconcileAndApply(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.AddedCount)
	assert.Len(t, obs.reports, 2)

	v, err := engine.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, v.Clean())
	assert.Len(t, obs.validations, 1)

	assert.Equal(t, 5, engine.MaxLevel(context.Background(), "minecraft:sharpness"))
	assert.Equal(t, 1, engine.MaxLevel(context.Background(), "mod:zap"))

	require.NoError(t, store.SetMaxLevel("minecraft:sharpness", 10))
	d := engine.Detail(context.Background(), "minecraft:sharpness")
	assert.Equal(t, 10, d.MaxLevel)
	assert.True(t, d.Known)
}

package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"enchlib/core/tables"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnknownSource is returned by New for an unsupported registry source.
var ErrUnknownSource = errors.New("unknown registry source")

// Registry is the external enumeration of valid enchantments.
type Registry interface {
	// ListKnownIDs returns every enchantment the host knows about.
	ListKnownIDs(ctx context.Context) (tables.IDSet, error)
	// IntrinsicMaxLevel returns the host's own max level for id, or 0 when
	// the id is unknown.
	IntrinsicMaxLevel(ctx context.Context, id tables.ID) (int, error)
}

// Source loads a full catalogue in one read.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Load reads the catalogue.
	Load(ctx context.Context) (Catalog, error)
}

// Catalog maps each known id to its intrinsic max level.
type Catalog map[tables.ID]int

// ListKnownIDs implements Registry.
func (c Catalog) ListKnownIDs(context.Context) (tables.IDSet, error) {
	return c.IDs(), nil
}

// IntrinsicMaxLevel implements Registry.
func (c Catalog) IntrinsicMaxLevel(_ context.Context, id tables.ID) (int, error) {
	return c[id], nil
}

// IDs returns the catalogue keys as a set.
func (c Catalog) IDs() tables.IDSet {
	set := make(tables.IDSet, len(c))
	for id := range c {
		set[id] = struct{}{}
	}
	return set
}

// NamespaceCount is the number of ids under one namespace.
type NamespaceCount struct {
	Namespace string `json:"namespace"`
	Count     int    `json:"count"`
}

// Namespaces counts ids per namespace, sorted by namespace.
func (c Catalog) Namespaces() []NamespaceCount {
	return CountNamespaces(c.IDs())
}

// CountNamespaces counts ids per namespace, sorted by namespace.
func CountNamespaces(ids tables.IDSet) []NamespaceCount {
	counts := make(map[string]int)
	for id := range ids {
		counts[id.Namespace()]++
	}
	out := make([]NamespaceCount, 0, len(counts))
	for ns, n := range counts {
		out = append(out, NamespaceCount{Namespace: ns, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Namespace < out[j].Namespace })
	return out
}

// add normalizes raw and records it. Later duplicates win.
func (c Catalog) add(raw string, maxLevel int, defaultNamespace string) bool {
	id := tables.NormalizeID(raw, defaultNamespace)
	if id == "" {
		return false
	}
	if maxLevel < 0 {
		maxLevel = 0
	}
	c[id] = maxLevel
	return true
}

// New builds the registry selected by cfg, wrapped in a TTL cache. db is
// only needed for the database source and may be nil otherwise.
func New(cfg Config, fsys afero.Fs, db *gorm.DB, defaultNamespace string, logger *zap.Logger) (*Cached, error) {
	var src Source
	switch cfg.Source {
	case SourceFile:
		src = NewFileRegistry(fsys, cfg.File, defaultNamespace)
	case SourceDatabase:
		if db == nil {
			return nil, fmt.Errorf("registry source %q requires a database connection", cfg.Source)
		}
		src = NewDBRegistry(db, cfg.Table, defaultNamespace)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
	return NewCached(src, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger), nil
}

// Fallback adapts r to the accessor fallback signature. Lookup errors are
// logged and treated as an unknown id.
func Fallback(ctx context.Context, r Registry, logger *zap.Logger) func(tables.ID) int {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(id tables.ID) int {
		lvl, err := r.IntrinsicMaxLevel(ctx, id)
		if err != nil {
			logger.Warn("Registry max level lookup failed", zap.String("id", string(id)), zap.Error(err))
			return 0
		}
		return lvl
	}
}

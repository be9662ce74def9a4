package enchantments

import (
	"context"
	"errors"
	"fmt"

	"enchlib/core/reconcile"
	"enchlib/core/registry"
	"enchlib/core/tables"

	"go.uber.org/zap"
)

// ErrNotFound is returned for an id that neither the tables nor the
// registry know.
var ErrNotFound = errors.New("enchantment not found")

// Service exposes the enchantment tables to the CLI and the HTTP API.
type Service struct {
	engine           *reconcile.Engine
	defaultNamespace string
	logger           *zap.Logger
}

// NewService creates a new enchantment service.
func NewService(engine *reconcile.Engine, defaultNamespace string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:           engine,
		defaultNamespace: defaultNamespace,
		logger:           logger,
	}
}

// Normalize turns operator input into an id.
func (s *Service) Normalize(raw string) (tables.ID, error) {
	id := tables.NormalizeID(raw, s.defaultNamespace)
	if id == "" {
		return "", tables.ErrEmptyID
	}
	return id, nil
}

// List returns the detail of every id in the tables, sorted. With
// enabledOnly, disabled and unknown ids are left out.
func (s *Service) List(ctx context.Context, enabledOnly bool) []tables.Detail {
	snap := s.engine.Store().Snapshot()
	ids := snap.IDs()
	if enabledOnly {
		ids = snap.EnabledIDs()
	}
	fallback := registry.Fallback(ctx, s.engine.Registry(), s.logger)
	out := make([]tables.Detail, 0, len(ids))
	for _, id := range ids {
		out = append(out, snap.Detail(id, fallback))
	}
	return out
}

// Get returns the detail of one id.
func (s *Service) Get(ctx context.Context, raw string) (tables.Detail, error) {
	id, err := s.Normalize(raw)
	if err != nil {
		return tables.Detail{}, err
	}
	d := s.engine.Detail(ctx, id)
	if d.Known {
		return d, nil
	}
	ids, err := s.engine.Registry().ListKnownIDs(ctx)
	if err != nil {
		return tables.Detail{}, fmt.Errorf("failed to list registry ids: %w", err)
	}
	if !ids.Has(id) {
		return tables.Detail{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// SetEnabled enables or disables id.
func (s *Service) SetEnabled(ctx context.Context, raw string, enabled bool) (tables.Detail, error) {
	return s.mutate(ctx, raw, func(st *tables.Store, id tables.ID) error {
		return st.SetEnabled(id, enabled)
	})
}

// SetMaxLevel overrides the max level of id.
func (s *Service) SetMaxLevel(ctx context.Context, raw string, level int) (tables.Detail, error) {
	return s.mutate(ctx, raw, func(st *tables.Store, id tables.ID) error {
		return st.SetMaxLevel(id, level)
	})
}

// ClearMaxLevel removes the max level override of id.
func (s *Service) ClearMaxLevel(ctx context.Context, raw string) (tables.Detail, error) {
	return s.mutate(ctx, raw, func(st *tables.Store, id tables.ID) error {
		return st.ClearMaxLevel(id)
	})
}

// SetRarity sets the rarity of id.
func (s *Service) SetRarity(ctx context.Context, raw, rarity string) (tables.Detail, error) {
	return s.mutate(ctx, raw, func(st *tables.Store, id tables.ID) error {
		return st.SetRarity(id, rarity)
	})
}

// SetList replaces a list row of id. Incompatibility values are normalized
// as ids.
func (s *Service) SetList(ctx context.Context, raw string, kind tables.Kind, values []string) (tables.Detail, error) {
	if kind == tables.KindIncompatibility {
		normalized := make([]string, 0, len(values))
		for _, v := range values {
			if id := tables.NormalizeID(v, s.defaultNamespace); id != "" {
				normalized = append(normalized, string(id))
			}
		}
		values = normalized
	}
	return s.mutate(ctx, raw, func(st *tables.Store, id tables.ID) error {
		return st.SetList(kind, id, values)
	})
}

// Remove deletes every row of id.
func (s *Service) Remove(ctx context.Context, raw string) error {
	id, err := s.Normalize(raw)
	if err != nil {
		return err
	}
	if !s.engine.Detail(ctx, id).Known {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.engine.Store().Remove(id)
}

// Stats summarises the tables against the registry.
type Stats struct {
	tables.Stats
	RegistryIDs     int `json:"registry_ids"`
	MissingInConfig int `json:"missing_in_config"`
	ExtraInConfig   int `json:"extra_in_config"`
}

// Stats returns the table statistics.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ids, err := s.engine.Registry().ListKnownIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry ids: %w", err)
	}
	snap := s.engine.Store().Snapshot()
	report := reconcile.Validate(snap, ids)
	return &Stats{
		Stats:           snap.Stats(),
		RegistryIDs:     len(ids),
		MissingInConfig: len(report.MissingInConfig),
		ExtraInConfig:   len(report.ExtraInConfig),
	}, nil
}

// RegistryInfo describes the registry as the service sees it.
type RegistryInfo struct {
	Source     string                    `json:"source"`
	Total      int                       `json:"total"`
	Namespaces []registry.NamespaceCount `json:"namespaces"`
}

// RegistryInfo returns the registry id counts per namespace.
func (s *Service) RegistryInfo(ctx context.Context) (*RegistryInfo, error) {
	ids, err := s.engine.Registry().ListKnownIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry ids: %w", err)
	}
	info := &RegistryInfo{
		Source:     "static",
		Total:      len(ids),
		Namespaces: registry.CountNamespaces(ids),
	}
	if c, ok := s.engine.Registry().(*registry.Cached); ok {
		info.Source = c.Source().Name()
	}
	return info, nil
}

// Reconcile plans and applies a reconcile run.
func (s *Service) Reconcile(ctx context.Context, opts reconcile.Options) (*reconcile.Plan, *reconcile.Report, error) {
	return s.engine.ReconcileAndApply(ctx, opts)
}

// Validate compares the tables with the registry.
func (s *Service) Validate(ctx context.Context) (*reconcile.ValidationReport, error) {
	return s.engine.Validate(ctx)
}

// Reload re-reads the table files.
func (s *Service) Reload() (tables.Stats, error) {
	snap, err := s.engine.Store().Reload()
	if err != nil {
		return tables.Stats{}, err
	}
	return snap.Stats(), nil
}

func (s *Service) mutate(ctx context.Context, raw string, fn func(*tables.Store, tables.ID) error) (tables.Detail, error) {
	id, err := s.Normalize(raw)
	if err != nil {
		return tables.Detail{}, err
	}
	if err := fn(s.engine.Store(), id); err != nil {
		return tables.Detail{}, err
	}
	return s.engine.Detail(ctx, id), nil
}

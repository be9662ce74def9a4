package tables

import (
	"time"
)

// Snapshot is an immutable view of all six tables as loaded from disk.
// Readers hold on to a snapshot for as long as they need a consistent view;
// reloads build a new one instead of mutating it.
type Snapshot struct {
	availability    map[ID]bool
	maxLevel        map[ID]*int
	rarity          map[ID]string
	compatibility   map[ID][]string
	categories      map[ID][]string
	incompatibility map[ID][]ID

	// LoadedAt is when the snapshot was read from disk.
	LoadedAt time.Time
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		availability:    make(map[ID]bool),
		maxLevel:        make(map[ID]*int),
		rarity:          make(map[ID]string),
		compatibility:   make(map[ID][]string),
		categories:      make(map[ID][]string),
		incompatibility: make(map[ID][]ID),
	}
}

// IsEnabled reports whether id is enabled. Unknown ids are disabled.
func (s *Snapshot) IsEnabled(id ID) bool {
	return s.availability[id]
}

// MaxLevelOverride returns the configured override for id, if any.
func (s *Snapshot) MaxLevelOverride(id ID) (int, bool) {
	lvl := s.maxLevel[id]
	if lvl == nil {
		return 0, false
	}
	return *lvl, true
}

// MaxLevel returns the override for id, else fallback(id) when it is
// positive, else 1. fallback may be nil.
func (s *Snapshot) MaxLevel(id ID, fallback func(ID) int) int {
	if lvl, ok := s.MaxLevelOverride(id); ok {
		return lvl
	}
	if fallback != nil {
		if lvl := fallback(id); lvl > 0 {
			return lvl
		}
	}
	return 1
}

// Rarity returns the rarity tag for id, DefaultRarity when unset.
func (s *Snapshot) Rarity(id ID) string {
	if r, ok := s.rarity[id]; ok && r != "" {
		return r
	}
	return DefaultRarity
}

// CompatibilityGroups returns the compatibility groups of id.
func (s *Snapshot) CompatibilityGroups(id ID) []string {
	return cloneStrings(s.compatibility[id])
}

// Categories returns the categories of id.
func (s *Snapshot) Categories(id ID) []string {
	return cloneStrings(s.categories[id])
}

// IncompatibleWith returns the ids that cannot be combined with id.
func (s *Snapshot) IncompatibleWith(id ID) []ID {
	src := s.incompatibility[id]
	out := make([]ID, len(src))
	copy(out, src)
	return out
}

// Has reports whether table kind has a row for id.
func (s *Snapshot) Has(kind Kind, id ID) bool {
	switch kind {
	case KindAvailability:
		_, ok := s.availability[id]
		return ok
	case KindMaxLevel:
		_, ok := s.maxLevel[id]
		return ok
	case KindRarity:
		_, ok := s.rarity[id]
		return ok
	case KindCompatibility:
		_, ok := s.compatibility[id]
		return ok
	case KindCategories:
		_, ok := s.categories[id]
		return ok
	case KindIncompatibility:
		_, ok := s.incompatibility[id]
		return ok
	}
	return false
}

// Keys returns the ids that have a row in table kind.
func (s *Snapshot) Keys(kind Kind) IDSet {
	set := make(IDSet)
	switch kind {
	case KindAvailability:
		for id := range s.availability {
			set[id] = struct{}{}
		}
	case KindMaxLevel:
		for id := range s.maxLevel {
			set[id] = struct{}{}
		}
	case KindRarity:
		for id := range s.rarity {
			set[id] = struct{}{}
		}
	case KindCompatibility:
		for id := range s.compatibility {
			set[id] = struct{}{}
		}
	case KindCategories:
		for id := range s.categories {
			set[id] = struct{}{}
		}
	case KindIncompatibility:
		for id := range s.incompatibility {
			set[id] = struct{}{}
		}
	}
	return set
}

// Len returns the number of rows in table kind.
func (s *Snapshot) Len(kind Kind) int {
	return len(s.Keys(kind))
}

// IDs returns every id that appears in any table, sorted.
func (s *Snapshot) IDs() []ID {
	union := make(IDSet)
	for _, d := range Definitions {
		for id := range s.Keys(d.Kind) {
			union[id] = struct{}{}
		}
	}
	return union.Sorted()
}

// EnabledIDs returns the enabled ids, sorted.
func (s *Snapshot) EnabledIDs() []ID {
	out := []ID{}
	for id, on := range s.availability {
		if on {
			out = append(out, id)
		}
	}
	return SortIDs(out)
}

// Incompatibilities returns a copy of the whole incompatibility table.
func (s *Snapshot) Incompatibilities() map[ID][]ID {
	out := make(map[ID][]ID, len(s.incompatibility))
	for id, list := range s.incompatibility {
		out[id] = append([]ID(nil), list...)
	}
	return out
}

// Detail is the merged view of every table for one enchantment.
type Detail struct {
	ID                  ID       `json:"id"`
	Known               bool     `json:"known"`
	Enabled             bool     `json:"enabled"`
	MaxLevel            int      `json:"max_level"`
	MaxLevelOverride    *int     `json:"max_level_override"`
	Rarity              string   `json:"rarity"`
	CompatibilityGroups []string `json:"compatibility_groups"`
	Categories          []string `json:"categories"`
	IncompatibleWith    []ID     `json:"incompatible_with"`
}

// Detail collects every accessor for id into one value.
func (s *Snapshot) Detail(id ID, fallback func(ID) int) Detail {
	d := Detail{
		ID:                  id,
		Enabled:             s.IsEnabled(id),
		MaxLevel:            s.MaxLevel(id, fallback),
		Rarity:              s.Rarity(id),
		CompatibilityGroups: s.CompatibilityGroups(id),
		Categories:          s.Categories(id),
		IncompatibleWith:    s.IncompatibleWith(id),
	}
	if lvl, ok := s.MaxLevelOverride(id); ok {
		d.MaxLevelOverride = &lvl
	}
	for _, def := range Definitions {
		if s.Has(def.Kind, id) {
			d.Known = true
			break
		}
	}
	return d
}

// Stats summarises a snapshot.
type Stats struct {
	// Total is the number of availability rows.
	Total int `json:"total"`
	// Enabled counts availability rows set to true.
	Enabled int `json:"enabled"`
	// Disabled counts availability rows set to false.
	Disabled int `json:"disabled"`
	// Overrides counts max level rows that carry a value.
	Overrides int `json:"overrides"`
	// Rows holds the row count per table.
	Rows map[Kind]int `json:"rows"`
}

// Stats computes summary counts.
func (s *Snapshot) Stats() Stats {
	st := Stats{Rows: make(map[Kind]int, len(Definitions))}
	for _, on := range s.availability {
		st.Total++
		if on {
			st.Enabled++
		} else {
			st.Disabled++
		}
	}
	for _, lvl := range s.maxLevel {
		if lvl != nil {
			st.Overrides++
		}
	}
	for _, d := range Definitions {
		st.Rows[d.Kind] = s.Len(d.Kind)
	}
	return st
}

func cloneStrings(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}

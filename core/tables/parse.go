package tables

import (
	"strconv"

	"enchlib/core/filestore"
	"enchlib/core/utils"

	"go.uber.org/zap"
)

// ParseWarning describes a configuration line that was skipped.
type ParseWarning struct {
	Kind   Kind
	File   string
	Line   int
	Key    string
	Reason string
}

// parseInto fills the table kind of snap from entries, replacing whatever the
// table held. Rejected lines are reported through warn and skipped.
func parseInto(snap *Snapshot, def Definition, entries []filestore.Entry, warn func(ParseWarning)) {
	reject := func(e filestore.Entry, reason string) {
		warn(ParseWarning{Kind: def.Kind, File: def.File, Line: e.Line, Key: e.Key, Reason: reason})
	}

	seen := make(map[ID]int, len(entries))
	for _, e := range entries {
		if reason := validateValue(def.Kind, e.Value); reason != "" {
			reject(e, reason)
			continue
		}

		id := ID(e.Key)
		if prev, dup := seen[id]; dup {
			warn(ParseWarning{
				Kind:   def.Kind,
				File:   def.File,
				Line:   e.Line,
				Key:    e.Key,
				Reason: "duplicate key overrides line " + strconv.Itoa(prev),
			})
		}
		seen[id] = e.Line

		switch def.Kind {
		case KindAvailability:
			on, _ := utils.ParseBool(e.Value)
			snap.availability[id] = on
		case KindMaxLevel:
			lvl, _ := utils.ParseLevel(e.Value)
			snap.maxLevel[id] = lvl
		case KindRarity:
			snap.rarity[id] = e.Value
		case KindCompatibility:
			snap.compatibility[id] = utils.SplitCSV(e.Value)
		case KindCategories:
			snap.categories[id] = utils.SplitCSV(e.Value)
		case KindIncompatibility:
			tokens := utils.SplitCSV(e.Value)
			ids := make([]ID, 0, len(tokens))
			for _, tok := range tokens {
				ids = append(ids, ID(tok))
			}
			snap.incompatibility[id] = ids
		}
	}
}

// ParseEntries parses entries as table kind into a fresh snapshot that only
// carries that table.
func ParseEntries(kind Kind, entries []filestore.Entry, logger *zap.Logger) (*Snapshot, []ParseWarning, error) {
	def, err := Lookup(kind)
	if err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	snap := NewSnapshot()
	var warnings []ParseWarning
	parseInto(snap, def, entries, func(w ParseWarning) {
		warnings = append(warnings, w)
		logWarning(logger, w)
	})
	return snap, warnings, nil
}

func logWarning(logger *zap.Logger, w ParseWarning) {
	logger.Warn("Skipping malformed config line",
		zap.String("table", string(w.Kind)),
		zap.String("file", w.File),
		zap.Int("line", w.Line),
		zap.String("key", w.Key),
		zap.String("reason", w.Reason))
}

// encodeValue renders a snapshot row back to its raw file value.
func encodeValue(snap *Snapshot, kind Kind, id ID) string {
	switch kind {
	case KindAvailability:
		return utils.FormatBool(snap.availability[id])
	case KindMaxLevel:
		if lvl := snap.maxLevel[id]; lvl != nil {
			return strconv.Itoa(*lvl)
		}
		return ""
	case KindRarity:
		return snap.rarity[id]
	case KindCompatibility:
		return utils.JoinCSV(snap.compatibility[id])
	case KindCategories:
		return utils.JoinCSV(snap.categories[id])
	case KindIncompatibility:
		list := snap.incompatibility[id]
		tokens := make([]string, len(list))
		for i, other := range list {
			tokens[i] = string(other)
		}
		return utils.JoinCSV(tokens)
	}
	return ""
}

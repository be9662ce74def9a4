package tables

import (
	"errors"
	"fmt"
	"strings"

	"enchlib/core/utils"
)

// Kind names one of the six configuration tables.
type Kind string

const (
	// KindAvailability holds the enabled flag per enchantment.
	KindAvailability Kind = "availability"
	// KindMaxLevel holds optional max level overrides.
	KindMaxLevel Kind = "max_level"
	// KindRarity holds the rarity tag.
	KindRarity Kind = "rarity"
	// KindCompatibility holds compatibility groups.
	KindCompatibility Kind = "compatibility"
	// KindCategories holds enchantment categories.
	KindCategories Kind = "categories"
	// KindIncompatibility holds ids an enchantment cannot be combined with.
	KindIncompatibility Kind = "incompatibility"
)

// DefaultRarity is the rarity of enchantments with no rarity row.
const DefaultRarity = "common"

var (
	// ErrUnknownTable is returned for a table name that is not one of the six kinds.
	ErrUnknownTable = errors.New("unknown table")
	// ErrInvalidLevel is returned when a max level below 1 is requested.
	ErrInvalidLevel = errors.New("max level must be at least 1")
	// ErrEmptyRarity is returned when an empty rarity is requested.
	ErrEmptyRarity = errors.New("rarity must not be empty")
	// ErrEmptyID is returned when an operation is given a blank id.
	ErrEmptyID = errors.New("enchantment id must not be empty")
	// ErrInvalidValue is returned for an id or value that cannot be stored as
	// a single key=value line.
	ErrInvalidValue = errors.New("invalid table value")
)

// Definition describes how one table is stored on disk.
type Definition struct {
	// Kind identifies the table.
	Kind Kind
	// File is the file name inside the configuration directory.
	File string
	// Header is written as a comment block when the file is created.
	Header string
	// DefaultValue is the raw value inserted by reconciliation.
	DefaultValue string
}

// Definitions lists the six tables in load order. File names keep the
// spelling used by existing installs, AviableEnch included.
var Definitions = []Definition{
	{
		Kind:         KindAvailability,
		File:         "AviableEnch.config",
		Header:       "Available enchantments\n<id>=true|false",
		DefaultValue: "true",
	},
	{
		Kind:         KindMaxLevel,
		File:         "EnchLVLmax.config",
		Header:       "Max level overrides\n<id>=<level>, leave empty to use the registry max level",
		DefaultValue: "",
	},
	{
		Kind:         KindRarity,
		File:         "EnchRarity.config",
		Header:       "Enchantment rarity\n<id>=<rarity>",
		DefaultValue: DefaultRarity,
	},
	{
		Kind:         KindCompatibility,
		File:         "EnchCompatibility.config",
		Header:       "Compatible item groups\n<id>=<group>,<group>,...",
		DefaultValue: "",
	},
	{
		Kind:         KindCategories,
		File:         "EnchCategories.config",
		Header:       "Enchantment categories\n<id>=<category>,<category>,...",
		DefaultValue: "",
	},
	{
		Kind:         KindIncompatibility,
		File:         "EnchUncompatibility.config",
		Header:       "Incompatible enchantments\n<id>=<id>,<id>,...",
		DefaultValue: "",
	},
}

// Lookup returns the definition for kind.
func Lookup(kind Kind) (Definition, error) {
	for _, d := range Definitions {
		if d.Kind == kind {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %s", ErrUnknownTable, kind)
}

// ParseKind resolves a user supplied table name.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, err := Lookup(k); err != nil {
		return "", err
	}
	return k, nil
}

// Files returns the file names of all tables.
func Files() []string {
	out := make([]string, 0, len(Definitions))
	for _, d := range Definitions {
		out = append(out, d.File)
	}
	return out
}

// IsListKind reports whether kind stores a comma-separated list.
func IsListKind(kind Kind) bool {
	return kind == KindCompatibility || kind == KindCategories || kind == KindIncompatibility
}

// validateValue checks a raw value against the shape kind expects. It
// returns a reason for rejection or "" when the value is acceptable.
func validateValue(kind Kind, raw string) string {
	switch kind {
	case KindAvailability:
		if !utils.IsBoolLiteral(raw) {
			return "expected true/false"
		}
	case KindMaxLevel:
		lvl, err := utils.ParseLevel(raw)
		if err != nil {
			return "expected an integer level"
		}
		if lvl != nil && *lvl < 1 {
			return "level must be at least 1"
		}
	case KindRarity:
		if strings.TrimSpace(raw) == "" {
			return "rarity is empty"
		}
	case KindCompatibility, KindCategories, KindIncompatibility:
		// A bare boolean is an availability row written to the wrong file.
		if utils.IsBoolLiteral(raw) {
			return "expected a comma-separated list"
		}
	}
	return ""
}

// checkID rejects ids that would not read back as the same key.
func checkID(id ID) error {
	raw := string(id)
	switch {
	case strings.TrimSpace(raw) == "":
		return ErrEmptyID
	case strings.TrimSpace(raw) != raw:
		return fmt.Errorf("%w: id %q has surrounding whitespace", ErrInvalidValue, raw)
	case strings.HasPrefix(raw, "#"):
		return fmt.Errorf("%w: id %q starts with '#'", ErrInvalidValue, raw)
	case strings.ContainsAny(raw, "=\r\n"):
		return fmt.Errorf("%w: id %q contains '=' or a line break", ErrInvalidValue, raw)
	}
	return nil
}

// checkListValues rejects list items that would split or break the CSV row.
func checkListValues(values []string) error {
	for _, v := range values {
		if strings.ContainsAny(v, ",\r\n") {
			return fmt.Errorf("%w: list item %q contains ',' or a line break", ErrInvalidValue, v)
		}
	}
	return nil
}

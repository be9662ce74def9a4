package tables

import (
	"sort"
	"strings"
)

// ID identifies an enchantment as "<namespace>:<path>". It is treated as an
// opaque key everywhere except for namespace grouping and normalisation.
type ID string

// Namespace returns the part before the first ':' or "" when there is none.
func (id ID) Namespace() string {
	ns, _, found := strings.Cut(string(id), ":")
	if !found {
		return ""
	}
	return ns
}

// Path returns the part after the first ':' or the whole id when there is no
// namespace.
func (id ID) Path() string {
	_, path, found := strings.Cut(string(id), ":")
	if !found {
		return string(id)
	}
	return path
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// NormalizeID trims and lower-cases input and prefixes defaultNamespace when
// the id has none ("sharpness" -> "minecraft:sharpness").
func NormalizeID(input, defaultNamespace string) ID {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, ":") && defaultNamespace != "" {
		s = defaultNamespace + ":" + s
	}
	return ID(s)
}

// IDSet is a set of enchantment ids.
type IDSet map[ID]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...ID) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []ID {
	return SortIDs(s.Slice())
}

// Slice returns the members in unspecified order.
func (s IDSet) Slice() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Minus returns the members of s not in other, sorted.
func (s IDSet) Minus(other IDSet) []ID {
	out := []ID{}
	for id := range s {
		if !other.Has(id) {
			out = append(out, id)
		}
	}
	return SortIDs(out)
}

// SortIDs sorts ids in place and returns them.
func SortIDs(ids []ID) []ID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

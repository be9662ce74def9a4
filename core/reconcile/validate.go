package reconcile

import (
	"fmt"
	"strings"

	"enchlib/core/tables"
)

// Validate compares snap with the registry ids and checks incompatibility
// symmetry. It never modifies anything.
func Validate(snap *tables.Snapshot, ids tables.IDSet) *ValidationReport {
	avail := snap.Keys(tables.KindAvailability)
	report := &ValidationReport{
		Checked:         len(ids),
		MissingInConfig: ids.Minus(avail),
		ExtraInConfig:   avail.Minus(ids),
		AsymmetricPairs: []Pair{},
	}

	incompat := snap.Incompatibilities()
	reverse := make(map[tables.ID]tables.IDSet, len(incompat))
	for id, list := range incompat {
		reverse[id] = tables.NewIDSet(list...)
	}

	sources := make([]tables.ID, 0, len(incompat))
	for id := range incompat {
		sources = append(sources, id)
	}
	for _, a := range tables.SortIDs(sources) {
		seen := make(tables.IDSet)
		for _, b := range incompat[a] {
			if b == a || seen.Has(b) {
				continue
			}
			seen[b] = struct{}{}
			if !reverse[b].Has(a) {
				report.AsymmetricPairs = append(report.AsymmetricPairs, Pair{A: a, B: b})
			}
		}
	}
	return report
}

// Format renders report for an operator. Without verbose only the counts
// are printed.
func Format(report *ValidationReport, verbose bool) string {
	var b strings.Builder
	if report.Clean() {
		fmt.Fprintf(&b, "Configuration matches the registry (%d enchantments checked).\n", report.Checked)
		return b.String()
	}

	fmt.Fprintf(&b, "Checked %d enchantments: %d missing in config, %d unknown to registry, %d one-way incompatibilities.\n",
		report.Checked, len(report.MissingInConfig), len(report.ExtraInConfig), len(report.AsymmetricPairs))
	if !verbose {
		return b.String()
	}

	writeIDs := func(title string, ids []tables.ID) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, id := range ids {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}
	writeIDs("Missing in config", report.MissingInConfig)
	writeIDs("Unknown to registry", report.ExtraInConfig)
	if len(report.AsymmetricPairs) > 0 {
		b.WriteString("One-way incompatibilities:\n")
		for _, p := range report.AsymmetricPairs {
			fmt.Fprintf(&b, "  - %s lists %s, but not the reverse\n", p.A, p.B)
		}
	}
	return b.String()
}

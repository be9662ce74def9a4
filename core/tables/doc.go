// Package tables holds the six enchantment configuration tables and the
// read API used by the rest of the service.
//
// # Tables
//
//   - availability (AviableEnch.config): enabled flag, default true
//   - max_level (EnchLVLmax.config): optional override, empty defers to the registry
//   - rarity (EnchRarity.config): free-form tag, default "common"
//   - compatibility (EnchCompatibility.config): comma-separated groups
//   - categories (EnchCategories.config): comma-separated categories
//   - incompatibility (EnchUncompatibility.config): comma-separated ids
//
// # Snapshots
//
// A Store loads all six files into an immutable Snapshot and publishes it
// through an atomic pointer. Accessors on Snapshot are pure reads with an
// explicit default for unknown ids, so a mod-added enchantment that has not
// been reconciled yet is a normal case rather than an error.
//
// Mutations are serialized by the Store, written through the filestore and
// followed by a full reload. A reload that fails on I/O leaves the previous
// snapshot in place. Malformed lines never fail a load: they are logged and
// skipped.
package tables

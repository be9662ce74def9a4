// Package enchantments exposes the enchantment tables to operators.
//
// The Service is shared by the CLI and the HTTP API: it normalizes ids with
// the default namespace, applies the registry max level fallback and pairs
// every mutation with a reload of the table store.
//
// # HTTP Endpoints
//
//   - GET /enchantments : Lists every configured enchantment (?enabled=true filters).
//   - GET /enchantments/stats : Table statistics against the registry.
//   - GET /enchantments/registry : Registry id counts per namespace.
//   - GET /enchantments/validate : Missing, extra and one-way incompatible ids.
//   - POST /enchantments/reconcile : Fills missing rows (?dry_run, ?prune, ?confirm).
//   - POST /enchantments/reload : Re-reads the table files.
//   - GET /enchantments/:id : One enchantment.
//   - DELETE /enchantments/:id : Removes every row of an id.
//   - PUT /enchantments/:id/enabled | max-level | rarity : Updates one value.
//   - DELETE /enchantments/:id/max-level : Drops the max level override.
//   - PUT /enchantments/:id/compatibility | categories | incompatibility : Replaces a list.
package enchantments

// Package registry supplies the canonical set of enchantment ids and their
// intrinsic max levels.
//
// Three sources exist: a YAML catalogue file, a table in the game server
// database, and an in-memory Catalog used by tests and tooling. New selects
// one from configuration and wraps it in Cached, a TTL cache with stampede
// protection so a burst of HTTP requests only reads the source once.
//
//	reg, err := registry.New(cfg.Registry, afero.NewOsFs(), db, cfg.Server.DefaultNamespace, log)
//	ids, err := reg.ListKnownIDs(ctx)
package registry

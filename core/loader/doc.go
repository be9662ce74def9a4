// Package loader mounts HTTP features on the Fiber app.
//
// A feature owns one route group and knows whether it can run:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The start command registers enchantments, integrity and backup with a
// Manager and calls LoadAll. Disabled features (backup without object
// storage, for instance) are logged and skipped. The first Load error stops
// startup.
package loader

// Package database connects to the game server database that backs the
// enchantment registry and inspects its schema.
//
// # Connect
//
// Connect opens a GORM connection for the configured driver (mysql or
// sqlite) and pings it with the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns in a dialect-neutral form and
// MissingColumns compares them with the columns a caller needs. The registry
// uses both to confirm that its catalogue table has an id and a max level
// column before trusting it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	missing, err := database.MissingColumns(db, "enchantments", "id", "max_level")
package database

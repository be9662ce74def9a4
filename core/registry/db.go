package registry

import (
	"context"
	"fmt"

	"enchlib/core/database"

	"gorm.io/gorm"
)

// RequiredColumns are the catalogue table columns DBRegistry reads.
var RequiredColumns = []string{"id", "max_level"}

// DBRegistry reads the catalogue from a table in the game server database.
type DBRegistry struct {
	db               *gorm.DB
	table            string
	defaultNamespace string
}

// NewDBRegistry creates a registry over table.
func NewDBRegistry(db *gorm.DB, table, defaultNamespace string) *DBRegistry {
	return &DBRegistry{db: db, table: table, defaultNamespace: defaultNamespace}
}

// Name implements Source.
func (r *DBRegistry) Name() string {
	return "database:" + r.table
}

// Table returns the catalogue table name.
func (r *DBRegistry) Table() string {
	return r.table
}

// Load implements Source.
func (r *DBRegistry) Load(ctx context.Context) (Catalog, error) {
	var rows []Enchantment
	err := r.db.WithContext(ctx).
		Table(r.table).
		Select("id, max_level").
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query registry table %s: %w", r.table, err)
	}

	cat := make(Catalog, len(rows))
	for _, row := range rows {
		cat.add(row.ID, row.MaxLevel, r.defaultNamespace)
	}
	return cat, nil
}

// CheckSchema returns the required columns the catalogue table lacks.
func (r *DBRegistry) CheckSchema(ctx context.Context) ([]string, error) {
	return database.MissingColumns(r.db.WithContext(ctx), r.table, RequiredColumns...)
}

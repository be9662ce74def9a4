package registry

import (
	"fmt"

	"gorm.io/gorm"
)

// Enchantment is one row of the registry table read by DBRegistry.
type Enchantment struct {
	ID       string `gorm:"primaryKey;column:id;type:varchar(128)"`
	MaxLevel int    `gorm:"column:max_level;default:1"`
}

// TableName returns the default registry table.
func (Enchantment) TableName() string {
	return "enchantments"
}

// Migrate creates table, or adds the columns it lacks, so DBRegistry can
// read it. Existing columns and rows are left alone.
func Migrate(db *gorm.DB, table string) error {
	if err := db.Table(table).AutoMigrate(&Enchantment{}); err != nil {
		return fmt.Errorf("failed to migrate registry table %s: %w", table, err)
	}
	return nil
}

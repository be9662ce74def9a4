package checks

import (
	"fmt"

	"enchlib/core/filestore"
	"enchlib/core/tables"

	"go.uber.org/zap"
)

// CheckFiles returns the table files missing from the configuration
// directory.
func CheckFiles(files *filestore.Store) ([]string, error) {
	missing := []string{}
	for _, name := range tables.Files() {
		exists, err := files.Exists(name)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", name, err)
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// FixFiles creates the missing table files with their header and no rows.
// Files that appeared since the check are left alone. The next reconcile
// fills the new ones. Callers serialize it with other table writes through
// tables.Store.Mutate.
func FixFiles(files *filestore.Store, logger *zap.Logger, missing []string) error {
	if err := files.EnsureDir(); err != nil {
		return err
	}
	for _, name := range missing {
		exists, err := files.Exists(name)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", name, err)
		}
		if exists {
			logger.Debug("Table file already present", zap.String("file", name))
			continue
		}
		if err := files.WriteEntries(name, nil); err != nil {
			logger.Error("Failed to create table file", zap.String("file", name), zap.Error(err))
			return err
		}
		logger.Info("Created missing table file", zap.String("file", name))
	}
	return nil
}

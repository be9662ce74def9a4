package checks

import (
	"fmt"
	"strings"

	"enchlib/core/database"
	"enchlib/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServerReport strictly types the result of a registry schema check.
type ServerReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport is the outcome for one table.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// expectedColumn pairs a column with the type families it may use.
type expectedColumn struct {
	Name  string
	Types []string
}

// RegistryColumns is the schema the database registry reads.
var RegistryColumns = []expectedColumn{
	{Name: "id", Types: []string{"varchar", "char", "text"}},
	{Name: "max_level", Types: []string{"int", "integer", "tinyint", "smallint", "mediumint", "bigint"}},
}

// CheckServerIntegrity verifies that the registry table carries the
// columns and column types the database registry expects.
func CheckServerIntegrity(db *gorm.DB, table string) (*ServerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &ServerReport{
		Driver:  db.Dialector.Name(),
		Tables:  make(map[string]TableReport),
		Matched: true,
		Errors:  []string{},
	}

	tblReport := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualCols, err := database.GetTableColumns(db, table)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
		report.Matched = false
		tblReport.Status = "error"
		report.Tables[table] = tblReport
		return report, nil
	}

	actual := make(map[string]string, len(actualCols))
	for _, col := range actualCols {
		actual[col.Field] = col.Type
	}

	for _, want := range RegistryColumns {
		typ, ok := actual[want.Name]
		if !ok {
			tblReport.MissingColumns = append(tblReport.MissingColumns, want.Name)
			continue
		}
		if !matchesType(typ, want.Types) {
			tblReport.TypeMismatches = append(tblReport.TypeMismatches,
				fmt.Sprintf("%s: got %s, want one of %s", want.Name, typ, strings.Join(want.Types, "/")))
		}
	}

	if len(tblReport.MissingColumns) > 0 || len(tblReport.TypeMismatches) > 0 {
		tblReport.Status = "error"
		report.Matched = false
	}
	report.Tables[table] = tblReport
	return report, nil
}

// matchesType reports whether a column type such as "varchar(64)" or
// "int(11) unsigned" belongs to one of the families.
func matchesType(actual string, families []string) bool {
	base := actual
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}
	for _, f := range families {
		if base == f {
			return true
		}
	}
	return false
}

// FixServerIntegrity creates the registry table, or adds its missing
// columns. Type mismatches are reported but never altered.
func FixServerIntegrity(db *gorm.DB, table string, logger *zap.Logger) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := registry.Migrate(db, table); err != nil {
		logger.Error("Failed to migrate registry table", zap.String("table", table), zap.Error(err))
		return err
	}
	logger.Info("Registry table migrated", zap.String("table", table))
	return nil
}

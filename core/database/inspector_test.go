package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestGetTableColumns(t *testing.T) {
	db := newSQLite(t)

	err := db.Exec("CREATE TABLE enchantments (id TEXT PRIMARY KEY, max_level INTEGER NOT NULL, note TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "enchantments")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "text", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "integer", colMap["max_level"].Type)
	assert.Equal(t, "NO", colMap["max_level"].Null)
	assert.Equal(t, "YES", colMap["note"].Null)

	// PRAGMA table_info returns no rows for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db := newSQLite(t)
	require.NoError(t, db.Exec("CREATE TABLE enchantments (id TEXT, level INTEGER)").Error)

	missing, err := MissingColumns(db, "enchantments", "id", "max_level")
	require.NoError(t, err)
	assert.Equal(t, []string{"max_level"}, missing)

	missing, err = MissingColumns(db, "ghost", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, missing)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "VARCHAR(64)", "NO", "PRI", nil, "").
		AddRow("Max_Level", "INT(11)", "NO", "", "1", "")
	mock.ExpectQuery("SHOW COLUMNS FROM `enchantments`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "enchantments")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "varchar(64)", columns[0].Type)
	assert.Equal(t, "max_level", columns[1].Field)
	require.NotNil(t, columns[1].Default)
	assert.Equal(t, "1", *columns[1].Default)
	assert.NoError(t, mock.ExpectationsWereMet())
}

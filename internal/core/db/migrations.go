package db

import (
	"fmt"
)

// columnMigration adds a column that older databases were created without
type columnMigration struct {
	table      string
	column     string
	definition string
}

// Columns added to a table after it first shipped go here, in order.
// initSchema must create them too so fresh databases skip the ALTER.
var columnMigrations []columnMigration

// migrate applies database migrations for existing databases
func (db *DB) migrate() error {
	for i, m := range columnMigrations {
		if err := db.ensureColumn(m); err != nil {
			return fmt.Errorf("migration %03d: %w", i+1, err)
		}
	}
	return nil
}

func (db *DB) ensureColumn(m columnMigration) error {
	var count int
	err := db.conn.QueryRow(fmt.Sprintf(`
		SELECT COUNT(*) FROM pragma_table_info('%s')
		WHERE name = ?
	`, m.table), m.column).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = db.conn.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s;`, m.table, m.column, m.definition))
	if err != nil {
		return fmt.Errorf("add %s.%s column: %w", m.table, m.column, err)
	}
	return nil
}

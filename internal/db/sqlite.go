package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/schemadoc/internal/schema"
)

// SQLiteImporter introspects a SQLite database file into a notation
// document. The module is named after the database file.
type SQLiteImporter struct {
	db         *sql.DB
	moduleName string
}

// NewSQLiteImporter opens a SQLite database file and verifies it.
func NewSQLiteImporter(ctx context.Context, path string) (*SQLiteImporter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == "" || name == ":memory:" {
		name = "main"
	}
	return &SQLiteImporter{db: db, moduleName: name}, nil
}

// Close closes the database connection.
func (i *SQLiteImporter) Close() error {
	return i.db.Close()
}

// Import extracts the listed tables (or all tables when the list is empty).
func (i *SQLiteImporter) Import(ctx context.Context, tables []string) (*schema.Document, error) {
	tableNames, err := i.tableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	var infos []tableInfo
	for _, name := range tableNames {
		info, err := i.importTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to import table %s: %w", name, err)
		}
		infos = append(infos, *info)
	}
	return buildDocument(i.moduleName, infos), nil
}

func (i *SQLiteImporter) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (i *SQLiteImporter) importTable(ctx context.Context, name string) (*tableInfo, error) {
	info := &tableInfo{Name: name}

	if err := i.importColumns(ctx, name, info); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if err := i.markUniqueAndIndexed(ctx, name, info); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	fks, err := i.importForeignKeys(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	info.ForeignKeys = fks
	return info, nil
}

func (i *SQLiteImporter) importColumns(ctx context.Context, tableName string, info *tableInfo) error {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	// pk holds the 1-based position within the primary key, 0 otherwise.
	type pkCol struct {
		name string
		pos  int
	}
	var pkCols []pkCol

	for rows.Next() {
		var cid, notNull, pkPos int
		var col columnInfo
		var defaultVal sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultVal, &pkPos); err != nil {
			return err
		}
		col.Nullable = notNull == 0 && pkPos == 0
		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}
		if pkPos > 0 {
			pkCols = append(pkCols, pkCol{name: col.Name, pos: pkPos})
		}
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for pos := 1; pos <= len(pkCols); pos++ {
		for _, c := range pkCols {
			if c.pos == pos {
				info.PrimaryKey = append(info.PrimaryKey, c.name)
			}
		}
	}
	return nil
}

// markUniqueAndIndexed walks index_list and index_info to flag columns
// covered by single-column indexes. Unique indexes become UNIQUE
// constraints, plain ones the indexed prefix.
func (i *SQLiteImporter) markUniqueAndIndexed(ctx context.Context, tableName string, info *tableInfo) error {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", tableName))
	if err != nil {
		return err
	}

	type index struct {
		name   string
		unique bool
	}
	var indexes []index
	for rows.Next() {
		var seq, uniqueFlag, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &uniqueFlag, &origin, &partial); err != nil {
			rows.Close()
			return err
		}
		// "pk" indexes duplicate the primary key declaration.
		if origin == "pk" {
			continue
		}
		indexes = append(indexes, index{name: name, unique: uniqueFlag == 1})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	unique := make(map[string]bool)
	indexed := make(map[string]bool)
	for _, idx := range indexes {
		cols, err := i.indexColumns(ctx, idx.name)
		if err != nil {
			return err
		}
		if len(cols) != 1 {
			continue
		}
		if idx.unique {
			unique[cols[0]] = true
		} else {
			indexed[cols[0]] = true
		}
	}

	for n := range info.Columns {
		if unique[info.Columns[n].Name] {
			info.Columns[n].Unique = true
		}
		if indexed[info.Columns[n].Name] {
			info.Columns[n].Indexed = true
		}
	}
	return nil
}

func (i *SQLiteImporter) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", indexName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

func (i *SQLiteImporter) importForeignKeys(ctx context.Context, tableName string) ([]foreignKey, error) {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []foreignKey
	for rows.Next() {
		var id, seq int
		var table, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		target := "id"
		if to.Valid {
			target = to.String
		}
		fks = append(fks, foreignKey{Column: from, TargetTable: table, TargetColumn: target})
	}
	return fks, rows.Err()
}

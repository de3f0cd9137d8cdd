package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/tordrt/schemadoc/internal/schema"
)

// MySQLImporter introspects a MySQL database into a notation document.
type MySQLImporter struct {
	db         *sql.DB
	schemaName string
}

// NewMySQLImporter opens a MySQL connection and verifies it. The
// connection string uses the Go MySQL driver DSN format.
func NewMySQLImporter(ctx context.Context, connString, schemaName string) (*MySQLImporter, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if schemaName == "" {
		schemaName, err = ParseDatabaseName(connString)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to determine database name: %w", err)
		}
	}
	return &MySQLImporter{db: db, schemaName: schemaName}, nil
}

// ParseDatabaseName extracts the database name from a MySQL DSN of the
// form user:pass@tcp(host:port)/dbname.
func ParseDatabaseName(connString string) (string, error) {
	slash := strings.LastIndex(connString, "/")
	if slash < 0 || slash == len(connString)-1 {
		return "", fmt.Errorf("connection string %q has no database name", connString)
	}
	name := connString[slash+1:]
	if q := strings.Index(name, "?"); q >= 0 {
		name = name[:q]
	}
	if name == "" {
		return "", fmt.Errorf("connection string %q has no database name", connString)
	}
	return name, nil
}

// Close closes the database connection.
func (i *MySQLImporter) Close() error {
	return i.db.Close()
}

// Import extracts the listed tables (or all tables when the list is empty).
func (i *MySQLImporter) Import(ctx context.Context, tables []string) (*schema.Document, error) {
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
	return buildDocument(i.schemaName, infos), nil
}

func (i *MySQLImporter) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := i.db.QueryContext(ctx, query, i.schemaName)
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

func (i *MySQLImporter) importTable(ctx context.Context, name string) (*tableInfo, error) {
	info := &tableInfo{Name: name}

	columns, pk, err := i.importColumns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	info.Columns = columns
	info.PrimaryKey = pk

	fks, err := i.importForeignKeys(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	info.ForeignKeys = fks
	return info, nil
}

// importColumns reads column metadata. The column_key field carries PRI,
// UNI, and MUL markers, which cover primary key, unique, and indexed in
// one pass.
func (i *MySQLImporter) importColumns(ctx context.Context, tableName string) ([]columnInfo, []string, error) {
	query := `
		SELECT
			column_name,
			column_type,
			data_type,
			is_nullable,
			column_default,
			column_key
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`
	rows, err := i.db.QueryContext(ctx, query, i.schemaName, tableName)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []columnInfo
	var pk []string
	for rows.Next() {
		var col columnInfo
		var columnType, dataType, nullable, columnKey string
		var defaultVal sql.NullString

		if err := rows.Scan(&col.Name, &columnType, &dataType, &nullable, &defaultVal, &columnKey); err != nil {
			return nil, nil, err
		}

		col.Type = columnType
		col.Nullable = nullable == "YES"
		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}
		switch columnKey {
		case "PRI":
			pk = append(pk, col.Name)
		case "UNI":
			col.Unique = true
		case "MUL":
			col.Indexed = true
		}
		if dataType == "enum" {
			col.EnumValues = parseMySQLEnum(columnType)
			col.Type = "enum"
		}
		columns = append(columns, col)
	}
	return columns, pk, rows.Err()
}

// parseMySQLEnum parses "enum('a','b','c')" into its value list.
func parseMySQLEnum(columnType string) []string {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start < 0 || end < 0 || start >= end {
		return nil
	}
	var values []string
	for _, v := range strings.Split(columnType[start+1:end], ",") {
		v = strings.Trim(strings.TrimSpace(v), "'")
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

func (i *MySQLImporter) importForeignKeys(ctx context.Context, tableName string) ([]foreignKey, error) {
	query := `
		SELECT
			column_name,
			referenced_table_name,
			referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND referenced_table_name IS NOT NULL
		ORDER BY ordinal_position
	`
	rows, err := i.db.QueryContext(ctx, query, i.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []foreignKey
	for rows.Next() {
		var fk foreignKey
		if err := rows.Scan(&fk.Column, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

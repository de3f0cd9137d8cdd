package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/schemadoc/internal/schema"
)

// PostgresImporter introspects a PostgreSQL schema into a notation
// document.
type PostgresImporter struct {
	conn       *pgx.Conn
	schemaName string
}

// NewPostgresImporter connects to PostgreSQL and verifies the connection.
func NewPostgresImporter(ctx context.Context, connString, schemaName string) (*PostgresImporter, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresImporter{conn: conn, schemaName: schemaName}, nil
}

// Close closes the database connection.
func (i *PostgresImporter) Close(ctx context.Context) error {
	return i.conn.Close(ctx)
}

// Import extracts the listed tables (or all tables when the list is empty)
// and maps them to a document whose single module is named after the
// schema.
func (i *PostgresImporter) Import(ctx context.Context, tables []string) (*schema.Document, error) {
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

func (i *PostgresImporter) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := i.conn.Query(ctx, query, i.schemaName)
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

func (i *PostgresImporter) importTable(ctx context.Context, name string) (*tableInfo, error) {
	info := &tableInfo{Name: name}

	columns, err := i.importColumns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	info.Columns = columns

	pk, err := i.importPrimaryKey(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	info.PrimaryKey = pk

	fks, err := i.importForeignKeys(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	info.ForeignKeys = fks

	if err := i.markIndexedColumns(ctx, name, info); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	return info, nil
}

func (i *PostgresImporter) importColumns(ctx context.Context, tableName string) ([]columnInfo, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.is_nullable,
			c.column_default,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.constraint_column_usage ccu
					ON tc.constraint_name = ccu.constraint_name
					AND tc.table_schema = ccu.table_schema
				WHERE tc.table_schema = $1
					AND tc.table_name = $2
					AND tc.constraint_type = 'UNIQUE'
					AND ccu.column_name = c.column_name
			) THEN true ELSE false END AS is_unique
		FROM information_schema.columns c
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := i.conn.Query(ctx, query, i.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []columnInfo
	var enumTypes []string
	for rows.Next() {
		var col columnInfo
		var dataType, udtName, nullable string
		var charMax, precision, scale *int
		var defaultVal *string

		if err := rows.Scan(&col.Name, &dataType, &udtName, &charMax, &precision, &scale,
			&nullable, &defaultVal, &col.Unique); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.DefaultValue = defaultVal
		col.Type = renderPostgresType(dataType, udtName, charMax, precision, scale)
		if dataType == "USER-DEFINED" {
			enumTypes = append(enumTypes, udtName)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(enumTypes) > 0 {
		values, err := i.enumValues(ctx, enumTypes)
		if err != nil {
			return nil, err
		}
		for idx := range columns {
			if v, ok := values[columns[idx].Type]; ok {
				columns[idx].EnumValues = v
			}
		}
	}
	return columns, nil
}

// renderPostgresType flattens information_schema metadata back into a
// single type expression for mapColumnType.
func renderPostgresType(dataType, udtName string, charMax, precision, scale *int) string {
	switch dataType {
	case "character varying":
		if charMax != nil {
			return fmt.Sprintf("varchar(%d)", *charMax)
		}
		return "varchar"
	case "character":
		if charMax != nil {
			return fmt.Sprintf("char(%d)", *charMax)
		}
		return "char"
	case "numeric":
		if precision != nil && scale != nil {
			return fmt.Sprintf("numeric(%d,%d)", *precision, *scale)
		}
		return "numeric"
	case "ARRAY":
		// udt_name has an underscore prefix for arrays (e.g. "_text").
		if len(udtName) > 0 && udtName[0] == '_' {
			return udtName[1:] + "[]"
		}
		return "text[]"
	case "USER-DEFINED":
		return udtName
	}
	return dataType
}

func (i *PostgresImporter) enumValues(ctx context.Context, typeNames []string) (map[string][]string, error) {
	query := `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = $1 AND t.typname = ANY($2)
		ORDER BY t.typname, e.enumsortorder
	`
	rows, err := i.conn.Query(ctx, query, i.schemaName, typeNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var typName, label string
		if err := rows.Scan(&typName, &label); err != nil {
			return nil, err
		}
		result[typName] = append(result[typName], label)
	}
	return result, rows.Err()
}

func (i *PostgresImporter) importPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`
	rows, err := i.conn.Query(ctx, query, i.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pk = append(pk, name)
	}
	return pk, rows.Err()
}

func (i *PostgresImporter) importForeignKeys(ctx context.Context, tableName string) ([]foreignKey, error) {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`
	rows, err := i.conn.Query(ctx, query, i.schemaName, tableName)
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

// markIndexedColumns sets the Indexed flag for columns covered by a
// non-primary single-column index.
func (i *PostgresImporter) markIndexedColumns(ctx context.Context, tableName string, info *tableInfo) error {
	query := `
		SELECT array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS column_names
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class idx ON idx.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
			AND NOT ix.indisprimary
		GROUP BY idx.relname
	`
	rows, err := i.conn.Query(ctx, query, i.schemaName, tableName)
	if err != nil {
		return err
	}
	defer rows.Close()

	indexed := make(map[string]bool)
	for rows.Next() {
		var cols []string
		if err := rows.Scan(&cols); err != nil {
			return err
		}
		if len(cols) == 1 {
			indexed[cols[0]] = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for idx := range info.Columns {
		if indexed[info.Columns[idx].Name] {
			info.Columns[idx].Indexed = true
		}
	}
	return nil
}

// Package db imports live database schemas as notation documents.
//
// Each importer introspects one engine (PostgreSQL, MySQL, SQLite) into a
// shared intermediate table shape, which is then mapped to a
// schema.Document: columns become fields with required/optional prefixes,
// primary keys, uniques, defaults, and enums become constraints, and
// foreign keys feed both per-field FK constraints and the relationship
// definitions block.
package db

import (
	"regexp"
	"strings"

	"github.com/tordrt/schemadoc/internal/parser"
	"github.com/tordrt/schemadoc/internal/schema"
)

// tableInfo is the engine-neutral shape produced by the importers.
type tableInfo struct {
	Name        string
	Columns     []columnInfo
	PrimaryKey  []string
	ForeignKeys []foreignKey
}

type columnInfo struct {
	Name         string
	Type         string // engine type, e.g. "varchar(255)", "integer"
	Nullable     bool
	Unique       bool
	Indexed      bool
	DefaultValue *string
	EnumValues   []string
}

type foreignKey struct {
	Column       string
	TargetTable  string
	TargetColumn string
}

// buildDocument maps the intermediate tables onto a notation document with
// a single module section named after the source schema or database.
func buildDocument(moduleName string, tables []tableInfo) *schema.Document {
	doc := &schema.Document{
		Schema: schema.SchemaDefinition{
			Modules:  []schema.ModuleDecl{{Name: moduleName}},
			Sections: []schema.ModuleSection{{Name: moduleName}},
		},
	}
	if isHeaderName(moduleName) {
		doc.Header = &schema.Header{Filename: moduleName + parser.HeaderExtension}
	}

	var rels []schema.Relationship
	section := &doc.Schema.Sections[0]
	for _, table := range tables {
		section.Entities = append(section.Entities, buildEntity(table))
		for _, fk := range table.ForeignKeys {
			rels = append(rels, schema.Relationship{
				From: fk.TargetTable,
				To:   table.Name,
				Kind: schema.OneToMany,
			})
		}
	}
	if len(rels) > 0 {
		doc.Relationships = &schema.RelationshipDefinitions{Relationships: rels}
	}
	return doc
}

var headerNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func isHeaderName(s string) bool {
	return headerNameRe.MatchString(s)
}

func buildEntity(table tableInfo) schema.Entity {
	entity := schema.Entity{Name: table.Name, Kind: schema.StandardEntity}

	pk := make(map[string]bool, len(table.PrimaryKey))
	for _, c := range table.PrimaryKey {
		pk[c] = true
	}
	fks := make(map[string]foreignKey, len(table.ForeignKeys))
	for _, fk := range table.ForeignKeys {
		fks[fk.Column] = fk
	}

	for _, col := range table.Columns {
		field := schema.Field{Names: []string{col.Name}}

		if col.Nullable {
			field.Prefixes = append(field.Prefixes, schema.Optional)
		} else {
			field.Prefixes = append(field.Prefixes, schema.Required)
		}
		if col.Indexed {
			field.Prefixes = append(field.Prefixes, schema.Indexed)
		}

		field.Type = mapColumnType(col)

		if pk[col.Name] {
			field.Constraints = append(field.Constraints, schema.Constraint{Name: "PK"})
		}
		if col.Unique && !pk[col.Name] {
			field.Constraints = append(field.Constraints, schema.Constraint{Name: "UNIQUE"})
		}
		if fk, ok := fks[col.Name]; ok {
			value := fk.TargetTable + "." + fk.TargetColumn
			field.Constraints = append(field.Constraints, schema.Constraint{Name: "FK", Value: &value})
		}
		if col.DefaultValue != nil {
			value := sanitizeDefault(*col.DefaultValue)
			if value != "" {
				field.Constraints = append(field.Constraints, schema.Constraint{Name: "DEFAULT", Value: &value})
			}
		}

		entity.Fields = append(entity.Fields, field)
	}
	return entity
}

// sanitizeDefault strips quoting and type casts from engine default
// expressions ('active'::text becomes active) so the value survives a
// notation round trip.
func sanitizeDefault(v string) string {
	if i := strings.Index(v, "::"); i >= 0 {
		v = v[:i]
	}
	v = strings.Trim(strings.TrimSpace(v), `'"`)
	// Commas and brackets would collide with the constraint syntax.
	v = strings.Map(func(r rune) rune {
		switch r {
		case ',', '[', ']':
			return -1
		}
		return r
	}, v)
	return v
}

var parametricTypeRe = regexp.MustCompile(`^([a-z ]+)\((\d+)(?:,\s*(\d+))?\)$`)

// mapColumnType converts an engine type name to a notation data type.
// Unrecognized names map to a capitalized simple type, which the validator
// surfaces as an advisory unknown-type warning.
func mapColumnType(col columnInfo) schema.DataType {
	if len(col.EnumValues) > 0 {
		return schema.DataType{Kind: schema.ParametricType, Name: "Enum", Params: col.EnumValues}
	}

	t := strings.ToLower(strings.TrimSpace(col.Type))

	if strings.HasSuffix(t, "[]") {
		inner := col
		inner.Type = strings.TrimSuffix(t, "[]")
		elem := mapColumnType(inner)
		return schema.DataType{Kind: schema.ArrayType, Elem: &elem}
	}

	if m := parametricTypeRe.FindStringSubmatch(t); m != nil {
		name, params := parametricName(strings.TrimSpace(m[1])), []string{m[2]}
		if m[3] != "" {
			params = append(params, m[3])
		}
		if name != "" {
			return schema.DataType{Kind: schema.ParametricType, Name: name, Params: params}
		}
		t = strings.TrimSpace(m[1])
	}

	return schema.DataType{Kind: schema.SimpleType, Name: simpleName(t)}
}

func parametricName(base string) string {
	switch base {
	case "varchar", "character varying":
		return "String"
	case "char", "character":
		return "Char"
	case "decimal", "numeric":
		return "Decimal"
	case "binary", "varbinary":
		return "Binary"
	}
	return ""
}

func simpleName(t string) string {
	switch t {
	case "int", "integer", "int4", "mediumint", "serial":
		return "Int"
	case "bigint", "int8", "bigserial":
		return "BigInt"
	case "smallint", "int2", "tinyint":
		return "SmallInt"
	case "text", "longtext", "mediumtext", "tinytext", "clob":
		return "Text"
	case "varchar", "character varying":
		return "String"
	case "real", "float", "float4":
		return "Float"
	case "double", "double precision", "float8":
		return "Double"
	case "decimal", "numeric":
		return "Decimal"
	case "boolean", "bool":
		return "Boolean"
	case "date":
		return "Date"
	case "time", "timetz", "time without time zone", "time with time zone":
		return "Time"
	case "timestamp", "timestamptz", "datetime",
		"timestamp without time zone", "timestamp with time zone":
		return "Timestamp"
	case "uuid":
		return "UUID"
	case "json", "jsonb":
		return "JSON"
	case "bytea", "blob", "longblob", "mediumblob", "binary":
		return "Binary"
	case "interval":
		return "Interval"
	case "money":
		return "Money"
	}
	// Fall back to a capitalized identifier-safe name.
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, t)
	if cleaned == "" || cleaned[0] >= '0' && cleaned[0] <= '9' {
		cleaned = "X" + cleaned
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}

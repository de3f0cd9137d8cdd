// Package validator checks a parsed schema document for structural,
// referential, and stylistic problems.
//
// Validation never aborts: every pass runs to completion over the same
// immutable document and the full error and warning lists are returned in
// one result, in deterministic order (pass order, then discovery order).
package validator

import (
	"fmt"

	"github.com/tordrt/schemadoc/internal/schema"
)

// ErrorKind tags a validation error case.
type ErrorKind string

const (
	DuplicateEntityName      ErrorKind = "duplicate_entity_name"
	DuplicateFieldName       ErrorKind = "duplicate_field_name"
	InvalidFieldPrefix       ErrorKind = "invalid_field_prefix"
	InvalidDataType          ErrorKind = "invalid_data_type"
	InvalidConstraint        ErrorKind = "invalid_constraint"
	MissingPrimaryKey        ErrorKind = "missing_primary_key"
	InvalidForeignKey        ErrorKind = "invalid_foreign_key"
	CircularReference        ErrorKind = "circular_reference"
	InvalidRelationship      ErrorKind = "invalid_relationship"
	InvalidCardinality       ErrorKind = "invalid_cardinality"
	MissingRequiredEntity    ErrorKind = "missing_required_entity"
	InconsistentRelationship ErrorKind = "inconsistent_relationship"
)

// Error is one validation error with its contextual identifiers. Errors
// indicate the document is unusable and flip Result.Valid to false.
type Error struct {
	Kind   ErrorKind
	Entity string
	Field  string
	Detail string
}

func (e Error) String() string {
	s := string(e.Kind)
	if e.Entity != "" {
		s += " entity=" + e.Entity
	}
	if e.Field != "" {
		s += " field=" + e.Field
	}
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

// Result is the outcome of validating one document. Warnings are advisory
// quality signals and never affect Valid.
type Result struct {
	Valid    bool
	Errors   []Error
	Warnings []string
}

// Options tunes the advisory checks. The zero value selects the defaults;
// none of these settings can turn a warning into an error.
type Options struct {
	// TypeVocabulary is the advisory set of known simple type names.
	TypeVocabulary []string
	// Patterns maps entity-name substrings to expected substructure field
	// name hints (the "Route should have stops" class of warning).
	Patterns []Pattern
	// MinFields is the field count at or below which an entity is flagged
	// as possibly missing substructure.
	MinFields int
	// MaxJSONProperties is the JSON object size above which a separate
	// embedded entity is suggested.
	MaxJSONProperties int
}

// Pattern is one entity-name heuristic: when an entity name contains
// NamePattern (case-insensitive) it is expected to carry a field whose
// name contains one of FieldHints.
type Pattern struct {
	NamePattern string   `yaml:"name"`
	FieldHints  []string `yaml:"fields"`
}

// DefaultOptions returns the built-in heuristic configuration.
func DefaultOptions() Options {
	return Options{
		TypeVocabulary:    DefaultTypeVocabulary(),
		Patterns:          DefaultPatterns(),
		MinFields:         2,
		MaxJSONProperties: 5,
	}
}

// DefaultTypeVocabulary returns the advisory simple type vocabulary.
func DefaultTypeVocabulary() []string {
	return []string{
		"String", "Text", "Char",
		"Int", "Integer", "BigInt", "SmallInt",
		"Float", "Double", "Decimal", "Numeric", "Money",
		"Boolean", "Bool",
		"Date", "Time", "DateTime", "Timestamp", "Interval",
		"UUID", "ULID", "Binary", "Blob", "JSON", "XML", "GeoPoint",
	}
}

// DefaultPatterns returns the built-in entity-name substructure hints.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{NamePattern: "Route", FieldHints: []string{"stops", "waypoints"}},
		{NamePattern: "Order", FieldHints: []string{"items", "lines"}},
		{NamePattern: "Invoice", FieldHints: []string{"lines", "items"}},
		{NamePattern: "Menu", FieldHints: []string{"items", "sections"}},
		{NamePattern: "Playlist", FieldHints: []string{"tracks", "entries"}},
		{NamePattern: "Survey", FieldHints: []string{"questions"}},
	}
}

// Validate runs all passes with the default options.
func Validate(doc *schema.Document) Result {
	return ValidateWith(doc, DefaultOptions())
}

// ValidateWith runs all passes with the given options. Passes only read
// the document; they share no state beyond the collected result.
func ValidateWith(doc *schema.Document, opts Options) Result {
	if opts.TypeVocabulary == nil {
		opts.TypeVocabulary = DefaultTypeVocabulary()
	}
	if opts.Patterns == nil {
		opts.Patterns = DefaultPatterns()
	}
	if opts.MinFields == 0 {
		opts.MinFields = 2
	}
	if opts.MaxJSONProperties == 0 {
		opts.MaxJSONProperties = 5
	}

	v := &run{doc: doc, opts: opts, entities: doc.EntityNames()}
	v.headerPass()
	v.relationshipPass()
	v.structurePass()
	v.dataTypePass()
	v.constraintPass()
	v.heuristicPass()

	return Result{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type run struct {
	doc      *schema.Document
	opts     Options
	entities map[string]bool
	errors   []Error
	warnings []string
}

func (v *run) errorf(kind ErrorKind, entity, field, format string, args ...interface{}) {
	v.errors = append(v.errors, Error{
		Kind:   kind,
		Entity: entity,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (v *run) warnf(format string, args ...interface{}) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// headerPass flags a missing header. Header shape errors are caught at
// parse time, so only absence is reported here.
func (v *run) headerPass() {
	if v.doc.Header == nil {
		v.warnf("document has no @filename%s header", headerExtension)
	}
}

const headerExtension = ".dbschema"

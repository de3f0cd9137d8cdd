// Package schema defines the in-memory model for schema notation documents.
package schema

// Document is the root of a parsed schema notation file.
type Document struct {
	Header        *Header
	Relationships *RelationshipDefinitions
	Schema        SchemaDefinition
	Comments      []string
}

// Header is the optional declared filename line (@name.dbschema).
type Header struct {
	Filename string
}

// RelationshipDefinitions is the optional standalone wiring-diagram block.
// It is descriptive only and is not cross-checked against per-field FK
// constraints.
type RelationshipDefinitions struct {
	Relationships []Relationship
	Comments      []string
}

// RelationKind is the closed set of relationship cardinality tags.
type RelationKind string

const (
	OneToOne    RelationKind = "1:1"
	OneToMany   RelationKind = "1:M"
	ManyToMany  RelationKind = "N:M"
	Inheritance RelationKind = "inheritance"
	Composition RelationKind = "composition"
	Aggregation RelationKind = "aggregation"
)

// RelationNature describes ownership strength, independent of cardinality.
type RelationNature string

const (
	NatureComposition RelationNature = "composition"
	NatureAggregation RelationNature = "aggregation"
	NatureAssociation RelationNature = "association"
	NatureInheritance RelationNature = "inheritance"
	NatureDependency  RelationNature = "dependency"
)

// Relationship is one declared edge between two entities.
type Relationship struct {
	From    string
	To      string
	Kind    RelationKind
	Nature  RelationNature // empty if not declared
	Via     string         // junction entity for N:M, empty otherwise
	Comment string
}

// SchemaDefinition holds the declared module list and the module sections.
// The two are not cross-checked by the parser: sections may omit declared
// modules or add undeclared ones.
type SchemaDefinition struct {
	Modules  []ModuleDecl
	Sections []ModuleSection
}

// ModuleDecl is one "+ Name" entry in the module list.
type ModuleDecl struct {
	Name    string
	Comment string
}

// ModuleSection groups the entities of one module.
type ModuleSection struct {
	Name        string
	Description string
	Entities    []Entity
}

// EntityKind distinguishes standalone tables from embedded documents.
// It is selected purely by the separator row glyph under the entity name.
type EntityKind int

const (
	// StandardEntity is separated by a run of '=' characters.
	StandardEntity EntityKind = iota
	// EmbeddedEntity is separated by a '/'-delimited row and is meant to be
	// nested inside another entity.
	EmbeddedEntity
)

// Entity is one documented table, collection, or embedded structure.
type Entity struct {
	Name                 string
	Kind                 EntityKind
	Fields               []Field
	RelationshipSections []RelationshipSection
	FeatureSections      []FeatureSection
	Comment              string
}

// Prefix is a single-character sigil marking one facet of a field.
type Prefix rune

const (
	Required    Prefix = '*'
	Optional    Prefix = '-'
	Indexed     Prefix = '!'
	Sensitive   Prefix = '@'
	Masked      Prefix = '~'
	Partitioned Prefix = '>'
	Audit       Prefix = '$'
)

// Field is one field line of an entity. Names holds comma-joined synonyms;
// Prefixes preserves declaration order and may contain duplicates.
type Field struct {
	Prefixes    []Prefix
	Names       []string
	Type        DataType
	Constraints []Constraint
	Comment     string
}

// Name returns the primary (first) field name.
func (f Field) Name() string {
	if len(f.Names) == 0 {
		return ""
	}
	return f.Names[0]
}

// HasPrefix reports whether the field carries the given sigil.
func (f Field) HasPrefix(p Prefix) bool {
	for _, q := range f.Prefixes {
		if q == p {
			return true
		}
	}
	return false
}

// FindConstraint returns the first constraint with the given name, or nil.
func (f Field) FindConstraint(name string) *Constraint {
	for i := range f.Constraints {
		if f.Constraints[i].Name == name {
			return &f.Constraints[i]
		}
	}
	return nil
}

// TypeKind tags the DataType variant.
type TypeKind int

const (
	SimpleType TypeKind = iota
	ParametricType
	ArrayType
	JSONObjectType
	RelationshipArrayType
	// EmbeddedRef is never produced by the parser; a bare identifier always
	// parses as SimpleType and is reclassified against the entity set by
	// consumers that need the distinction.
	EmbeddedRef
)

// DataType is a recursive tagged variant. Exactly the fields relevant to
// Kind are populated:
//
//	SimpleType            Name
//	ParametricType        Name, Params
//	ArrayType             Elem
//	JSONObjectType        Object (empty for the opaque JSON literal)
//	RelationshipArrayType Entity, Card
//	EmbeddedRef           Entity
type DataType struct {
	Kind   TypeKind
	Name   string
	Params []string
	Elem   *DataType
	Object []JSONField
	Entity string
	Card   *Cardinality
}

// JSONField is one named member of a JSON object type.
type JSONField struct {
	Name string
	Type DataType
}

// Cardinality is a {min, max|unlimited} multiplicity bound.
type Cardinality struct {
	Min       int
	Max       int
	Unlimited bool
}

// Constraint is a named, optionally-valued field annotation. A nil Value
// means the constraint carried no payload (e.g. bare PK).
type Constraint struct {
	Name  string
	Value *string
}

// RelationshipSection is a loose documentation block nested in an entity.
type RelationshipSection struct {
	Title   string
	Details []RelationshipDetail
}

// RelationshipDetail is one item of a relationship section. Entity is the
// optional leading entity name ("Entity: description"); Description holds
// the rest of the item text.
type RelationshipDetail struct {
	Entity      string
	Description string
}

// FeatureSection is a loose free-text feature list nested in an entity.
type FeatureSection struct {
	Title string
	Items []string
}

// EntityNames returns the set of all entity names declared in the document.
func (d *Document) EntityNames() map[string]bool {
	names := make(map[string]bool)
	for _, sec := range d.Schema.Sections {
		for _, e := range sec.Entities {
			names[e.Name] = true
		}
	}
	return names
}

// Entities returns all entities in declaration order across all sections.
func (d *Document) Entities() []Entity {
	var out []Entity
	for _, sec := range d.Schema.Sections {
		out = append(out, sec.Entities...)
	}
	return out
}

// FindEntity returns the first entity with the given name, or nil.
func (d *Document) FindEntity(name string) *Entity {
	for i := range d.Schema.Sections {
		for j := range d.Schema.Sections[i].Entities {
			if d.Schema.Sections[i].Entities[j].Name == name {
				return &d.Schema.Sections[i].Entities[j]
			}
		}
	}
	return nil
}

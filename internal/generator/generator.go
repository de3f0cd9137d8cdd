// Package generator renders a schema document back into canonical
// notation text.
//
// Rendering is deterministic and semantically stable: parsing the
// generated output yields a document equal to the one that produced it,
// modulo reordering explicitly requested through the sort options. The
// generator is not the correctness authority; given an internally
// inconsistent document it renders best-effort output rather than failing.
package generator

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

// Config controls layout and presentation. Sorting never mutates the
// document; it only changes presentation order.
type Config struct {
	// NameWidth is the column the data type starts at on field lines.
	NameWidth int `yaml:"name_width"`
	// TypeWidth is the column the constraint list starts at.
	TypeWidth int `yaml:"type_width"`
	// SeparatorWidth is the length of entity separator rows.
	SeparatorWidth int `yaml:"separator_width"`
	// SortEntities renders entities of each module alphabetically.
	SortEntities bool `yaml:"sort_entities"`
	// SortFields renders the fields of each entity alphabetically.
	SortFields bool `yaml:"sort_fields"`
	// IncludeComments keeps comments in the output.
	IncludeComments bool `yaml:"include_comments"`
}

// DefaultConfig returns the canonical layout settings.
func DefaultConfig() Config {
	return Config{
		NameWidth:       20,
		TypeWidth:       24,
		SeparatorWidth:  30,
		IncludeComments: true,
	}
}

// Generator writes canonical notation to a writer.
type Generator struct {
	writer io.Writer
	config Config
}

// New creates a generator with the given layout configuration.
func New(w io.Writer, config Config) *Generator {
	if config.NameWidth <= 0 {
		config.NameWidth = 20
	}
	if config.TypeWidth <= 0 {
		config.TypeWidth = 24
	}
	if config.SeparatorWidth < 5 {
		// Separator rows shorter than five '=' would not be recognized as
		// entity headers by the description lookahead.
		config.SeparatorWidth = 5
	}
	return &Generator{writer: w, config: config}
}

// Format renders a document to a string with the given configuration.
func Format(doc *schema.Document, config Config) string {
	var buf bytes.Buffer
	_ = New(&buf, config).Generate(doc)
	return buf.String()
}

// Generate writes the whole document.
func (g *Generator) Generate(doc *schema.Document) error {
	if doc.Header != nil {
		g.printf("@%s\n\n", doc.Header.Filename)
	}
	if g.config.IncludeComments {
		for _, c := range doc.Comments {
			g.printf("# %s\n", c)
		}
		if len(doc.Comments) > 0 {
			g.printf("\n")
		}
	}

	if doc.Relationships != nil {
		g.generateRelationshipBlock(doc.Relationships)
	}

	g.printf("=== DATABASE SCHEMA ===\n\n")
	for _, m := range doc.Schema.Modules {
		g.printf("+ %s%s\n", m.Name, g.comment(m.Comment))
	}
	if len(doc.Schema.Modules) > 0 {
		g.printf("\n")
	}

	for _, section := range doc.Schema.Sections {
		g.generateModuleSection(section)
	}
	return nil
}

func (g *Generator) generateRelationshipBlock(defs *schema.RelationshipDefinitions) {
	g.printf("=== RELATIONSHIP DEFINITIONS ===\n\n")
	if g.config.IncludeComments {
		for _, c := range defs.Comments {
			g.printf("# %s\n", c)
		}
		if len(defs.Comments) > 0 {
			g.printf("\n")
		}
	}
	for _, rel := range defs.Relationships {
		g.printf("%s\n", formatRelationship(rel, g.config.IncludeComments))
	}
	if len(defs.Relationships) > 0 {
		g.printf("\n")
	}
}

func formatRelationship(rel schema.Relationship, withComment bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s [%s]", rel.From, rel.To, rel.Kind)
	if rel.Nature != "" {
		fmt.Fprintf(&b, " (%s)", rel.Nature)
	}
	if rel.Via != "" {
		fmt.Fprintf(&b, " via %s", rel.Via)
	}
	if withComment && rel.Comment != "" {
		fmt.Fprintf(&b, " # %s", rel.Comment)
	}
	return b.String()
}

func (g *Generator) generateModuleSection(section schema.ModuleSection) {
	g.printf("=== %s ===\n", section.Name)
	if section.Description != "" {
		g.printf("%s\n", section.Description)
	}
	g.printf("\n")

	entities := section.Entities
	if g.config.SortEntities {
		entities = sortedEntities(section.Entities)
	}

	for _, entity := range entities {
		g.generateEntity(entity)
	}
}

func (g *Generator) generateEntity(entity schema.Entity) {
	g.printf("%s%s\n", entity.Name, g.comment(entity.Comment))
	run := strings.Repeat("=", g.config.SeparatorWidth)
	if entity.Kind == schema.EmbeddedEntity {
		g.printf("/%s/\n", run)
	} else {
		g.printf("%s\n", run)
	}

	fields := entity.Fields
	if g.config.SortFields {
		fields = sortedFields(entity.Fields)
	}
	for _, field := range fields {
		g.printf("%s\n", g.formatField(field))
	}

	for _, sec := range entity.RelationshipSections {
		g.printf("\n  %s:\n", sec.Title)
		for _, d := range sec.Details {
			if d.Entity != "" {
				g.printf("  - %s: %s\n", d.Entity, d.Description)
			} else {
				g.printf("  - %s\n", d.Description)
			}
		}
	}
	for _, sec := range entity.FeatureSections {
		g.printf("\n  %s:\n", sec.Title)
		for _, item := range sec.Items {
			g.printf("  - %s\n", item)
		}
	}
	g.printf("\n")
}

func (g *Generator) formatField(field schema.Field) string {
	var b strings.Builder
	for _, p := range field.Prefixes {
		b.WriteRune(rune(p))
	}
	b.WriteByte(' ')

	names := strings.Join(field.Names, ",")
	b.WriteString(pad(names, g.config.NameWidth))
	b.WriteString(": ")

	typeStr := FormatDataType(field.Type)
	if len(field.Constraints) > 0 {
		b.WriteString(pad(typeStr, g.config.TypeWidth))
		b.WriteString(formatConstraints(field.Constraints))
	} else {
		b.WriteString(typeStr)
	}

	if g.config.IncludeComments && field.Comment != "" {
		b.WriteString(" # ")
		b.WriteString(field.Comment)
	}
	return strings.TrimRight(b.String(), " ")
}

// FormatDataType renders a data type in the surface syntax the parser
// accepts.
func FormatDataType(t schema.DataType) string {
	switch t.Kind {
	case schema.SimpleType:
		return t.Name
	case schema.ParametricType:
		return fmt.Sprintf("%s(%s)", t.Name, strings.Join(t.Params, ","))
	case schema.ArrayType:
		return fmt.Sprintf("Array<%s>", FormatDataType(*t.Elem))
	case schema.JSONObjectType:
		if len(t.Object) == 0 {
			return "JSON"
		}
		members := make([]string, len(t.Object))
		for i, m := range t.Object {
			members[i] = m.Name + ":" + FormatDataType(m.Type)
		}
		return "JSON{" + strings.Join(members, ",") + "}"
	case schema.RelationshipArrayType:
		return t.Entity + "[" + formatCardinality(t.Card) + "]"
	case schema.EmbeddedRef:
		return t.Entity
	}
	return t.Name
}

func formatCardinality(card *schema.Cardinality) string {
	if card == nil {
		return "0..*"
	}
	if card.Unlimited {
		return fmt.Sprintf("%d..*", card.Min)
	}
	return fmt.Sprintf("%d..%d", card.Min, card.Max)
}

// formatConstraints renders constraints as bracket groups. A bare
// constraint directly after a valued one starts a new group: inside one
// group a comma item without a colon would parse as a continuation of the
// previous value (the ENUM value-list rule).
func formatConstraints(constraints []schema.Constraint) string {
	var b strings.Builder
	open := false
	prevValued := false
	for _, c := range constraints {
		if open && c.Value == nil && prevValued {
			b.WriteString("]")
			open = false
		}
		if !open {
			b.WriteString("[")
			open = true
		} else {
			b.WriteString(",")
		}
		b.WriteString(c.Name)
		if c.Value != nil {
			b.WriteString(":")
			b.WriteString(*c.Value)
		}
		prevValued = c.Value != nil
	}
	if open {
		b.WriteString("]")
	}
	return b.String()
}

// pad right-pads s to width with at least one trailing space.
func pad(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}

func (g *Generator) comment(c string) string {
	if !g.config.IncludeComments || c == "" {
		return ""
	}
	return " # " + c
}

func (g *Generator) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(g.writer, format, args...)
}

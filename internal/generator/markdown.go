package generator

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

// MarkdownGenerator renders a document as a markdown reference page.
// Markdown output is one-way documentation; it does not round-trip
// through the parser.
type MarkdownGenerator struct {
	writer io.Writer
	config Config
}

// NewMarkdown creates a markdown generator with the given configuration.
// Only the sorting and comment options apply; the column widths are
// notation layout concerns.
func NewMarkdown(w io.Writer, config Config) *MarkdownGenerator {
	return &MarkdownGenerator{writer: w, config: config}
}

// FormatMarkdown renders a document to a markdown string.
func FormatMarkdown(doc *schema.Document, config Config) string {
	var buf bytes.Buffer
	_ = NewMarkdown(&buf, config).Generate(doc)
	return buf.String()
}

// Generate writes the whole document as markdown.
func (g *MarkdownGenerator) Generate(doc *schema.Document) error {
	if doc.Header != nil {
		g.printf("# %s\n\n", doc.Header.Filename)
	} else {
		g.printf("# Database Schema\n\n")
	}

	if doc.Relationships != nil && len(doc.Relationships.Relationships) > 0 {
		g.printf("## Relationships\n\n")
		for _, rel := range doc.Relationships.Relationships {
			g.printf("- %s\n", g.markdownRelationship(rel))
		}
		g.printf("\n")
	}

	for _, section := range doc.Schema.Sections {
		g.generateSection(section)
	}
	return nil
}

func (g *MarkdownGenerator) markdownRelationship(rel schema.Relationship) string {
	var b strings.Builder
	b.WriteString(rel.From)
	b.WriteString(" → ")
	b.WriteString(rel.To)
	b.WriteString(" (")
	b.WriteString(string(rel.Kind))
	if rel.Via != "" {
		b.WriteString(" via ")
		b.WriteString(rel.Via)
	}
	b.WriteString(")")
	if rel.Nature != "" {
		b.WriteString(", ")
		b.WriteString(string(rel.Nature))
	}
	if g.config.IncludeComments && rel.Comment != "" {
		b.WriteString(": ")
		b.WriteString(rel.Comment)
	}
	return b.String()
}

func (g *MarkdownGenerator) generateSection(section schema.ModuleSection) {
	g.printf("## %s\n\n", section.Name)
	if section.Description != "" {
		g.printf("%s\n\n", section.Description)
	}

	entities := section.Entities
	if g.config.SortEntities {
		entities = sortedEntities(section.Entities)
	}
	for _, entity := range entities {
		g.generateEntity(entity)
	}
}

func (g *MarkdownGenerator) generateEntity(entity schema.Entity) {
	if entity.Kind == schema.EmbeddedEntity {
		g.printf("### %s (embedded)\n\n", entity.Name)
	} else {
		g.printf("### %s\n\n", entity.Name)
	}
	if g.config.IncludeComments && entity.Comment != "" {
		g.printf("%s\n\n", entity.Comment)
	}

	fields := entity.Fields
	if g.config.SortFields {
		fields = sortedFields(entity.Fields)
	}
	for _, field := range fields {
		g.printf("- %s\n", g.markdownField(field))
	}
	if len(entity.Fields) > 0 {
		g.printf("\n")
	}

	for _, sec := range entity.RelationshipSections {
		g.printf("#### %s\n\n", sec.Title)
		for _, d := range sec.Details {
			if d.Entity != "" {
				g.printf("- **%s:** %s\n", d.Entity, d.Description)
			} else {
				g.printf("- %s\n", d.Description)
			}
		}
		g.printf("\n")
	}
	for _, sec := range entity.FeatureSections {
		g.printf("#### %s\n\n", sec.Title)
		for _, item := range sec.Items {
			g.printf("- %s\n", item)
		}
		g.printf("\n")
	}
}

func (g *MarkdownGenerator) markdownField(field schema.Field) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(strings.Join(field.Names, ", "))
	b.WriteString(":** ")
	b.WriteString(FormatDataType(field.Type))

	for _, attr := range fieldAttributes(field) {
		b.WriteString(", ")
		b.WriteString(attr)
	}

	if g.config.IncludeComments && field.Comment != "" {
		b.WriteString(" (")
		b.WriteString(field.Comment)
		b.WriteString(")")
	}
	return b.String()
}

// fieldAttributes flattens prefixes and constraints into the attribute
// list that follows the type.
func fieldAttributes(field schema.Field) []string {
	var attrs []string
	if field.HasPrefix(schema.Optional) {
		attrs = append(attrs, "optional")
	}
	if field.HasPrefix(schema.Indexed) {
		attrs = append(attrs, "indexed")
	}
	if field.HasPrefix(schema.Sensitive) {
		attrs = append(attrs, "sensitive")
	}
	for _, c := range field.Constraints {
		if c.Value != nil {
			attrs = append(attrs, c.Name+" "+*c.Value)
		} else {
			attrs = append(attrs, c.Name)
		}
	}
	return attrs
}

func sortedEntities(entities []schema.Entity) []schema.Entity {
	out := make([]schema.Entity, len(entities))
	copy(out, entities)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedFields(fields []schema.Field) []schema.Field {
	out := make([]schema.Field, len(fields))
	copy(out, fields)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (g *MarkdownGenerator) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(g.writer, format, args...)
}

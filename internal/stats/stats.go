// Package stats aggregates summary statistics over a parsed document.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

// Report holds aggregate counts for one document.
type Report struct {
	Modules          int
	Entities         int
	EmbeddedEntities int
	Fields           int
	Relationships    int
	PerModule        []ModuleStats
	PrefixCounts     map[schema.Prefix]int
	ConstraintCounts map[string]int
	TypeCounts       map[string]int
}

// ModuleStats holds per-module counts in declaration order.
type ModuleStats struct {
	Name     string
	Entities int
	Fields   int
}

// Collect builds a report from a document.
func Collect(doc *schema.Document) *Report {
	r := &Report{
		PrefixCounts:     make(map[schema.Prefix]int),
		ConstraintCounts: make(map[string]int),
		TypeCounts:       make(map[string]int),
	}
	if doc.Relationships != nil {
		r.Relationships = len(doc.Relationships.Relationships)
	}

	for _, section := range doc.Schema.Sections {
		r.Modules++
		ms := ModuleStats{Name: section.Name}
		for _, entity := range section.Entities {
			r.Entities++
			ms.Entities++
			if entity.Kind == schema.EmbeddedEntity {
				r.EmbeddedEntities++
			}
			for _, field := range entity.Fields {
				r.Fields++
				ms.Fields++
				for _, p := range field.Prefixes {
					r.PrefixCounts[p]++
				}
				for _, c := range field.Constraints {
					r.ConstraintCounts[c.Name]++
				}
				countTypes(r.TypeCounts, field.Type)
			}
		}
		r.PerModule = append(r.PerModule, ms)
	}
	return r
}

func countTypes(counts map[string]int, t schema.DataType) {
	switch t.Kind {
	case schema.SimpleType, schema.ParametricType:
		counts[t.Name]++
	case schema.ArrayType:
		counts["Array"]++
		countTypes(counts, *t.Elem)
	case schema.JSONObjectType:
		counts["JSON"]++
		for _, m := range t.Object {
			countTypes(counts, m.Type)
		}
	case schema.RelationshipArrayType, schema.EmbeddedRef:
		counts[t.Entity]++
	}
}

// WriteText renders the report as a compact text table.
func (r *Report) WriteText(w io.Writer) {
	_, _ = fmt.Fprintf(w, "SCHEMA STATISTICS\n\n")
	_, _ = fmt.Fprintf(w, "Modules:       %d\n", r.Modules)
	_, _ = fmt.Fprintf(w, "Entities:      %d (%d embedded)\n", r.Entities, r.EmbeddedEntities)
	_, _ = fmt.Fprintf(w, "Fields:        %d\n", r.Fields)
	_, _ = fmt.Fprintf(w, "Relationships: %d\n", r.Relationships)

	if len(r.PerModule) > 0 {
		_, _ = fmt.Fprintf(w, "\nPER MODULE\n")
		for _, m := range r.PerModule {
			_, _ = fmt.Fprintf(w, "  %-20s %3d entities %4d fields\n", m.Name, m.Entities, m.Fields)
		}
	}

	writeCounts(w, "FIELD PREFIXES", prefixNames(r.PrefixCounts))
	writeCounts(w, "CONSTRAINTS", r.ConstraintCounts)
	writeCounts(w, "TYPES", r.TypeCounts)
}

func prefixNames(counts map[schema.Prefix]int) map[string]int {
	names := map[schema.Prefix]string{
		schema.Required:    "required (*)",
		schema.Optional:    "optional (-)",
		schema.Indexed:     "indexed (!)",
		schema.Sensitive:   "sensitive (@)",
		schema.Masked:      "masked (~)",
		schema.Partitioned: "partitioned (>)",
		schema.Audit:       "audit ($)",
	}
	out := make(map[string]int, len(counts))
	for p, n := range counts {
		out[names[p]] = n
	}
	return out
}

func writeCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	// Highest count first, name as tie-breaker, for stable output.
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	_, _ = fmt.Fprintf(w, "\n%s\n", strings.ToUpper(title))
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
}

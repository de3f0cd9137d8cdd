package validator

import (
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

// heuristicPass emits best-effort quality warnings: suspiciously small
// entities, JSON blobs that deserve their own embedded entity, entity-name
// patterns with missing expected substructure, and the advisory notices
// about checks the tool deliberately does not perform. Nothing in this
// pass can produce an error.
func (v *run) heuristicPass() {
	for _, entity := range v.doc.Entities() {
		if len(entity.Fields) <= v.opts.MinFields {
			v.warnf("entity %s has only %d field(s); it may be missing substructure", entity.Name, len(entity.Fields))
		}
		for _, field := range entity.Fields {
			v.checkComplexStructure(entity.Name, field)
		}
		v.checkNamePatterns(entity)
	}

	v.checkModuleListConsistency()

	if v.doc.Relationships != nil && len(v.doc.Relationships.Relationships) > 0 && v.hasForeignKeys() {
		v.warnf("relationship definitions and per-field FK constraints are not cross-checked against each other")
	}
}

func (v *run) checkComplexStructure(entity string, field schema.Field) {
	t := field.Type
	if t.Kind == schema.JSONObjectType && len(t.Object) > v.opts.MaxJSONProperties {
		v.warnf("entity %s: field %s is a JSON object with %d properties; consider a separate embedded entity",
			entity, field.Name(), len(t.Object))
	}
	if t.Kind == schema.ArrayType && t.Elem != nil && t.Elem.Kind == schema.JSONObjectType {
		v.warnf("entity %s: field %s is an array of JSON objects; consider a separate embedded entity",
			entity, field.Name())
	}
}

// checkNamePatterns applies the configurable entity-name substring table:
// an entity whose name matches a pattern is expected to carry a field
// hinting at the named substructure.
func (v *run) checkNamePatterns(entity schema.Entity) {
	lowerName := strings.ToLower(entity.Name)
	for _, p := range v.opts.Patterns {
		if !strings.Contains(lowerName, strings.ToLower(p.NamePattern)) {
			continue
		}
		if v.hasFieldHint(entity, p.FieldHints) {
			continue
		}
		v.warnf("entity %s looks like a %s but has no field resembling %s",
			entity.Name, p.NamePattern, strings.Join(p.FieldHints, " or "))
	}
}

func (v *run) hasFieldHint(entity schema.Entity, hints []string) bool {
	for _, field := range entity.Fields {
		for _, name := range field.Names {
			lower := strings.ToLower(name)
			for _, hint := range hints {
				if strings.Contains(lower, strings.ToLower(hint)) {
					return true
				}
			}
		}
	}
	return false
}

// checkModuleListConsistency surfaces silent mismatches between the
// declared "+ Module" list and the module sections that actually appear.
// The parser tolerates these by design; here they stay advisory.
func (v *run) checkModuleListConsistency() {
	declared := make(map[string]bool)
	for _, m := range v.doc.Schema.Modules {
		declared[m.Name] = true
	}
	present := make(map[string]bool)
	for _, s := range v.doc.Schema.Sections {
		present[s.Name] = true
	}

	for _, m := range v.doc.Schema.Modules {
		if !present[m.Name] {
			v.warnf("module %q is declared but has no section", m.Name)
		}
	}
	for _, s := range v.doc.Schema.Sections {
		if !declared[s.Name] {
			v.warnf("module section %q is not declared in the module list", s.Name)
		}
	}
}

func (v *run) hasForeignKeys() bool {
	for _, entity := range v.doc.Entities() {
		for _, field := range entity.Fields {
			if field.FindConstraint("FK") != nil {
				return true
			}
		}
	}
	return false
}

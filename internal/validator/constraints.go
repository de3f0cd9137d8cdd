package validator

import (
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

// systemConstraints are accepted without further shape checking.
var systemConstraints = map[string]bool{
	"SYSTEM":     true,
	"AUTO":       true,
	"GENERATED":  true,
	"CALCULATED": true,
	"READONLY":   true,
	"IMMUTABLE":  true,
}

// valueConstraints require a payload.
var valueConstraints = map[string]bool{
	"DEFAULT": true,
	"ENUM":    true,
	"MIN":     true,
	"MAX":     true,
	"PATTERN": true,
}

// bareConstraints are known names that normally carry no payload.
var bareConstraints = map[string]bool{
	"PK":     true,
	"UNIQUE": true,
	"INDEX":  true,
}

// constraintPass checks per-field constraint lists: internal duplicates,
// per-name shape rules, and foreign-key resolution. Unknown names degrade
// to a warning; the constraint vocabulary is deliberately extensible.
func (v *run) constraintPass() {
	for _, entity := range v.doc.Entities() {
		for _, field := range entity.Fields {
			v.checkConstraints(entity.Name, field)
		}
	}
}

func (v *run) checkConstraints(entity string, field schema.Field) {
	seen := make(map[string]bool)

	for _, c := range field.Constraints {
		if seen[c.Name] {
			v.warnf("entity %s: field %s repeats constraint %s", entity, field.Name(), c.Name)
		}
		seen[c.Name] = true

		switch {
		case c.Name == "PK":
			if c.Value != nil {
				v.warnf("entity %s: field %s: PK does not take a value (got %q)", entity, field.Name(), *c.Value)
			}
		case c.Name == "FK":
			v.checkForeignKey(entity, field.Name(), c)
		case valueConstraints[c.Name]:
			if c.Value == nil {
				v.errorf(InvalidConstraint, entity, field.Name(),
					"%s requires a value", c.Name)
			}
		case bareConstraints[c.Name], systemConstraints[c.Name]:
			// Known, nothing further to check.
		default:
			v.warnf("entity %s: field %s uses unknown constraint %q", entity, field.Name(), c.Name)
		}
	}
}

// checkForeignKey requires the exact "Entity.field" shape and resolves the
// entity part against the global entity set.
func (v *run) checkForeignKey(entity, field string, c schema.Constraint) {
	if c.Value == nil {
		v.errorf(InvalidForeignKey, entity, field, "FK requires a value of the form Entity.field")
		return
	}
	parts := strings.Split(*c.Value, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		v.errorf(InvalidForeignKey, entity, field,
			"FK value %q is not of the form Entity.field", *c.Value)
		return
	}
	if !v.entities[parts[0]] {
		v.errorf(MissingRequiredEntity, parts[0], field,
			"FK on %s.%s references undeclared entity %q", entity, field, parts[0])
	}
}

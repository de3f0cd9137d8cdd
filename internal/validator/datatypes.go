package validator

import (
	"strconv"
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

// dataTypePass walks every field's data type recursively. The simple type
// vocabulary is advisory: unknown names warn, never error. Shape rules for
// parametric types and entity resolution for relationship arrays and
// embedded references are hard errors.
func (v *run) dataTypePass() {
	for _, entity := range v.doc.Entities() {
		for _, field := range entity.Fields {
			v.checkDataType(entity.Name, field.Name(), field.Type)
		}
	}
}

func (v *run) checkDataType(entity, field string, t schema.DataType) {
	switch t.Kind {
	case schema.SimpleType:
		v.checkSimpleType(entity, field, t.Name)
	case schema.ParametricType:
		v.checkParametricType(entity, field, t)
	case schema.ArrayType:
		v.checkDataType(entity, field, *t.Elem)
	case schema.JSONObjectType:
		for _, member := range t.Object {
			v.checkDataType(entity, field, member.Type)
		}
	case schema.RelationshipArrayType:
		if !v.entities[t.Entity] {
			v.errorf(MissingRequiredEntity, t.Entity, field,
				"field %s.%s references undeclared entity %q", entity, field, t.Entity)
		}
		v.checkCardinality(entity, field, t.Card)
	case schema.EmbeddedRef:
		if !v.entities[t.Entity] {
			v.errorf(MissingRequiredEntity, t.Entity, field,
				"field %s.%s embeds undeclared entity %q", entity, field, t.Entity)
		}
	}
}

// checkSimpleType reclassifies a bare identifier: a vocabulary name is a
// plain type, an identifier naming a declared entity is an embedded
// reference, and anything else is advisory-unknown.
func (v *run) checkSimpleType(entity, field, name string) {
	for _, known := range v.opts.TypeVocabulary {
		if name == known {
			return
		}
	}
	if v.entities[name] {
		if ref := v.doc.FindEntity(name); ref != nil && ref.Kind != schema.EmbeddedEntity {
			v.warnf("entity %s: field %s embeds %q, which is declared as a standard entity, not an embedded one",
				entity, field, name)
		}
		return
	}
	v.warnf("entity %s: field %s uses unknown type %q", entity, field, name)
}

func (v *run) checkParametricType(entity, field string, t schema.DataType) {
	switch t.Name {
	case "String", "Char", "Varchar", "Binary":
		if len(t.Params) != 1 || !isInteger(t.Params[0]) {
			v.errorf(InvalidDataType, entity, field,
				"%s requires exactly one integer parameter, got (%s)", t.Name, strings.Join(t.Params, ","))
		}
	case "Decimal", "Numeric":
		if len(t.Params) != 2 || !isInteger(t.Params[0]) || !isInteger(t.Params[1]) {
			v.errorf(InvalidDataType, entity, field,
				"%s requires exactly two integer parameters (precision, scale), got (%s)", t.Name, strings.Join(t.Params, ","))
		}
	case "Enum":
		if len(t.Params) == 0 {
			v.errorf(InvalidDataType, entity, field, "Enum requires at least one value")
		}
	default:
		v.warnf("entity %s: field %s uses unknown parametric type %q", entity, field, t.Name)
	}
}

func (v *run) checkCardinality(entity, field string, card *schema.Cardinality) {
	if card == nil {
		return
	}
	if card.Min < 0 {
		v.errorf(InvalidCardinality, entity, field,
			"cardinality minimum %d is negative", card.Min)
	}
	if !card.Unlimited && card.Max < card.Min {
		v.errorf(InvalidCardinality, entity, field,
			"cardinality maximum %d is less than minimum %d", card.Max, card.Min)
	}
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

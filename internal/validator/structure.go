package validator

import "github.com/tordrt/schemadoc/internal/schema"

// structurePass checks name uniqueness, prefix sanity, and primary-key
// presence. Entity names must be unique across the whole document, not
// just within their module.
func (v *run) structurePass() {
	seenEntities := make(map[string]bool)

	for _, entity := range v.doc.Entities() {
		if seenEntities[entity.Name] {
			v.errorf(DuplicateEntityName, entity.Name, "",
				"entity %q is declared more than once", entity.Name)
		}
		seenEntities[entity.Name] = true

		v.checkEntityStructure(entity)
	}
}

func (v *run) checkEntityStructure(entity schema.Entity) {
	seenFields := make(map[string]bool)
	hasPK := false

	for _, field := range entity.Fields {
		for _, name := range field.Names {
			if seenFields[name] {
				v.errorf(DuplicateFieldName, entity.Name, name,
					"field %q is declared more than once in entity %q", name, entity.Name)
			}
			seenFields[name] = true
		}

		if field.HasPrefix(schema.Required) && field.HasPrefix(schema.Optional) {
			v.errorf(InvalidFieldPrefix, entity.Name, field.Name(),
				"field %q is marked both required (*) and optional (-)", field.Name())
		}

		if field.FindConstraint("SYSTEM") != nil && field.HasPrefix(schema.Required) {
			v.warnf("entity %s: field %s carries SYSTEM and is also marked required; system fields are populated automatically",
				entity.Name, field.Name())
		}

		if field.FindConstraint("PK") != nil {
			hasPK = true
		}
	}

	if !hasPK {
		v.errorf(MissingPrimaryKey, entity.Name, "",
			"entity %q has no field with a PK constraint", entity.Name)
	}
}

//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tordrt/schemadoc/internal/generator"
	"github.com/tordrt/schemadoc/internal/parser"
	"github.com/tordrt/schemadoc/internal/schema"
)

// roundTrip formats a document and parses the result back
func roundTrip(t *testing.T, doc *schema.Document) *schema.Document {
	t.Helper()

	text := generator.Format(doc, generator.DefaultConfig())
	reparsed, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("Failed to reparse formatted output: %v", err)
	}
	return reparsed
}

// verifyEntitiesExist checks that all expected entities are present in the document
func verifyEntitiesExist(t *testing.T, doc *schema.Document, expected []string) {
	t.Helper()

	entities := doc.Entities()
	if len(entities) != len(expected) {
		t.Errorf("Expected %d entities, got %d", len(expected), len(entities))
	}

	names := doc.EntityNames()
	for _, name := range expected {
		if !names[name] {
			t.Errorf("Expected entity %s not found in document", name)
		}
	}
}

// verifyFields checks that expected fields exist in an entity
func verifyFields(t *testing.T, entity *schema.Entity, expected []string) {
	t.Helper()

	fieldMap := make(map[string]bool)
	for _, field := range entity.Fields {
		for _, name := range field.Names {
			fieldMap[name] = true
		}
	}

	for _, name := range expected {
		if !fieldMap[name] {
			t.Errorf("Expected field %s not found in %s entity", name, entity.Name)
		}
	}
}

// verifyPrimaryKey checks that the expected fields carry the PK constraint
func verifyPrimaryKey(t *testing.T, entity *schema.Entity, expectedPK []string) {
	t.Helper()

	var pk []string
	for _, field := range entity.Fields {
		if field.FindConstraint("PK") != nil {
			pk = append(pk, field.Name())
		}
	}

	if len(pk) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %v", expectedPK, pk)
		return
	}
	for i, name := range expectedPK {
		if pk[i] != name {
			t.Errorf("Expected primary key %v, got %v", expectedPK, pk)
			return
		}
	}
}

// findField returns the field with the given name, or nil
func findField(entity *schema.Entity, name string) *schema.Field {
	for i := range entity.Fields {
		for _, n := range entity.Fields[i].Names {
			if n == name {
				return &entity.Fields[i]
			}
		}
	}
	return nil
}

// verifyForeignKey checks that a field carries an FK constraint with the given target
func verifyForeignKey(t *testing.T, entity *schema.Entity, fieldName, target string) {
	t.Helper()

	field := findField(entity, fieldName)
	if field == nil {
		t.Errorf("Field %s not found in %s entity", fieldName, entity.Name)
		return
	}
	fk := field.FindConstraint("FK")
	if fk == nil {
		t.Errorf("Expected FK constraint on %s.%s", entity.Name, fieldName)
		return
	}
	if fk.Value == nil || *fk.Value != target {
		got := "<nil>"
		if fk.Value != nil {
			got = *fk.Value
		}
		t.Errorf("Expected FK target %s on %s.%s, got %s", target, entity.Name, fieldName, got)
	}
}

// verifyRelationship checks that the relationship definitions block contains
// a relationship from one entity to another
func verifyRelationship(t *testing.T, doc *schema.Document, from, to string) {
	t.Helper()

	if doc.Relationships == nil {
		t.Errorf("Expected relationship %s -> %s, document has no relationship definitions", from, to)
		return
	}
	for _, rel := range doc.Relationships.Relationships {
		if rel.From == from && rel.To == to {
			return
		}
	}
	t.Errorf("Expected relationship %s -> %s not found", from, to)
}

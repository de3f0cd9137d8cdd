package schemadoc

import (
	"context"
	"strings"
	"testing"

	"github.com/tordrt/schemadoc/internal/schema"
)

const exampleText = `@shop.dbschema

=== RELATIONSHIP DEFINITIONS ===

User -> Order [1:M]
Order -> AuditLog [1:M]

=== DATABASE SCHEMA ===

+ Core

=== Core ===

User
==============================
* id    : UUID [PK]
* email : String(255)

Order
==============================
* id      : UUID [PK]
* user_id : UUID [FK:User.id]

AuditLog
==============================
* id     : UUID [PK]
* detail : Text
`

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantType string
		wantConn string
		wantErr  bool
	}{
		{
			name:     "postgres",
			url:      "postgres://u:p@localhost:5432/shop",
			wantType: "postgres",
			wantConn: "postgres://u:p@localhost:5432/shop",
		},
		{
			name:     "postgresql alias",
			url:      "postgresql://u:p@localhost/shop",
			wantType: "postgres",
			wantConn: "postgresql://u:p@localhost/shop",
		},
		{
			name:     "mysql prefix is stripped",
			url:      "mysql://u:p@tcp(localhost:3306)/shop",
			wantType: "mysql",
			wantConn: "u:p@tcp(localhost:3306)/shop",
		},
		{
			name:     "sqlite prefix is stripped",
			url:      "sqlite://./shop.db",
			wantType: "sqlite",
			wantConn: "./shop.db",
		},
		{name: "empty", url: "", wantErr: true},
		{name: "unknown scheme", url: "oracle://u:p@host/db", wantErr: true},
		{name: "bare path", url: "/tmp/shop.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbType, conn, err := parseDatabaseURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDatabaseURL(%q) = %q %q, want error", tt.url, dbType, conn)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDatabaseURL(%q) failed: %v", tt.url, err)
			}
			if dbType != tt.wantType || conn != tt.wantConn {
				t.Errorf("parseDatabaseURL(%q) = %q %q, want %q %q", tt.url, dbType, conn, tt.wantType, tt.wantConn)
			}
		})
	}
}

func TestFilterExcludedEntities(t *testing.T) {
	doc, err := Parse(exampleText)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	filterExcludedEntities(doc, []string{"AuditLog"})

	if doc.FindEntity("AuditLog") != nil {
		t.Error("excluded entity still present")
	}
	if doc.FindEntity("User") == nil || doc.FindEntity("Order") == nil {
		t.Error("filter removed entities it should have kept")
	}

	rels := doc.Relationships.Relationships
	if len(rels) != 1 {
		t.Fatalf("relationships = %+v, want only User -> Order", rels)
	}
	if rels[0].From != "User" || rels[0].To != "Order" {
		t.Errorf("kept relationship = %+v", rels[0])
	}
}

func TestValidateExample(t *testing.T) {
	doc, err := Parse(exampleText)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	result := Validate(doc)
	if !result.Valid {
		t.Errorf("example document invalid: %v", result.Errors)
	}
}

func TestFormatNilConfigUsesDefaults(t *testing.T) {
	doc, err := Parse(exampleText)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	out := Format(doc, nil)
	cfg := DefaultFormatConfig()
	if out != Format(doc, &cfg) {
		t.Error("nil config does not match the default config")
	}
	if !strings.Contains(out, "=== DATABASE SCHEMA ===") {
		t.Errorf("formatted output:\n%s", out)
	}
}

func TestImportSchemaRejectsBadURL(t *testing.T) {
	if _, err := ImportSchema(context.Background(), "gopher://nope", nil); err == nil {
		t.Error("ImportSchema accepted an unsupported URL")
	}
}

func TestFilterExcludedEntitiesNoRelationships(t *testing.T) {
	doc := &Document{
		Schema: schema.SchemaDefinition{
			Sections: []schema.ModuleSection{{
				Name:     "M",
				Entities: []schema.Entity{{Name: "Keep"}, {Name: "Drop"}},
			}},
		},
	}

	filterExcludedEntities(doc, []string{"Drop"})
	if len(doc.Schema.Sections[0].Entities) != 1 || doc.Schema.Sections[0].Entities[0].Name != "Keep" {
		t.Errorf("entities = %+v", doc.Schema.Sections[0].Entities)
	}
}

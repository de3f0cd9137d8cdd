package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tordrt/schemadoc/internal/parser"
	"github.com/tordrt/schemadoc/internal/schema"
)

const sampleText = `@shop.dbschema

=== RELATIONSHIP DEFINITIONS ===

User -> Order [1:M]
Order -> Product [N:M] via OrderItem

=== DATABASE SCHEMA ===

+ Core
+ Sales

=== Core ===

User
==============================
* id       : UUID      [PK]
* email    : String(255) [UNIQUE]
@ secret   : String(64)
$ created  : Timestamp [SYSTEM]

=== Sales ===

Order
==============================
* id      : UUID [PK]
* user_id : UUID [FK:User.id]
- notes   : Text

Address
/============================/
* street : String(255) [PK]
* city   : String(120)
`

func collect(t *testing.T) *Report {
	t.Helper()
	doc, err := parser.Parse(sampleText)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return Collect(doc)
}

func TestCollectTotals(t *testing.T) {
	r := collect(t)

	if r.Modules != 2 {
		t.Errorf("Modules = %d, want 2", r.Modules)
	}
	if r.Entities != 3 {
		t.Errorf("Entities = %d, want 3", r.Entities)
	}
	if r.EmbeddedEntities != 1 {
		t.Errorf("EmbeddedEntities = %d, want 1", r.EmbeddedEntities)
	}
	if r.Fields != 9 {
		t.Errorf("Fields = %d, want 9", r.Fields)
	}
	if r.Relationships != 2 {
		t.Errorf("Relationships = %d, want 2", r.Relationships)
	}
}

func TestCollectPerModule(t *testing.T) {
	r := collect(t)

	if len(r.PerModule) != 2 {
		t.Fatalf("PerModule has %d entries, want 2", len(r.PerModule))
	}
	core := r.PerModule[0]
	if core.Name != "Core" || core.Entities != 1 || core.Fields != 4 {
		t.Errorf("Core stats = %+v", core)
	}
	sales := r.PerModule[1]
	if sales.Name != "Sales" || sales.Entities != 2 || sales.Fields != 5 {
		t.Errorf("Sales stats = %+v", sales)
	}
}

func TestCollectCounts(t *testing.T) {
	r := collect(t)

	if r.PrefixCounts[schema.Required] != 6 {
		t.Errorf("required prefix count = %d, want 6", r.PrefixCounts[schema.Required])
	}
	if r.PrefixCounts[schema.Optional] != 1 {
		t.Errorf("optional prefix count = %d, want 1", r.PrefixCounts[schema.Optional])
	}
	if r.PrefixCounts[schema.Sensitive] != 1 {
		t.Errorf("sensitive prefix count = %d, want 1", r.PrefixCounts[schema.Sensitive])
	}

	if r.ConstraintCounts["PK"] != 3 {
		t.Errorf("PK count = %d, want 3", r.ConstraintCounts["PK"])
	}
	if r.ConstraintCounts["FK"] != 1 {
		t.Errorf("FK count = %d, want 1", r.ConstraintCounts["FK"])
	}

	if r.TypeCounts["UUID"] != 3 {
		t.Errorf("UUID count = %d, want 3", r.TypeCounts["UUID"])
	}
	if r.TypeCounts["String"] != 4 {
		t.Errorf("String count = %d, want 4", r.TypeCounts["String"])
	}
}

func TestWriteText(t *testing.T) {
	r := collect(t)

	var buf bytes.Buffer
	r.WriteText(&buf)
	out := buf.String()

	for _, want := range []string{
		"SCHEMA STATISTICS",
		"Modules:       2",
		"Entities:      3 (1 embedded)",
		"PER MODULE",
		"Core",
		"FIELD PREFIXES",
		"required (*)",
		"CONSTRAINTS",
		"TYPES",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteText() missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCountsOrder(t *testing.T) {
	var buf bytes.Buffer
	writeCounts(&buf, "THINGS", map[string]int{"b": 2, "a": 2, "c": 5})
	out := buf.String()

	ci := strings.Index(out, "c ")
	ai := strings.Index(out, "a ")
	bi := strings.Index(out, "b ")
	if !(ci < ai && ai < bi) {
		t.Errorf("counts not ordered by count desc then name: %q", out)
	}
}

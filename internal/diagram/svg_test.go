package diagram

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/tordrt/schemadoc/internal/parser"
	"github.com/tordrt/schemadoc/internal/schema"
)

func render(t *testing.T, text string) string {
	t.Helper()
	doc, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var buf bytes.Buffer
	Render(&buf, doc)
	return buf.String()
}

func TestRenderBasicDocument(t *testing.T) {
	out := render(t, `=== RELATIONSHIP DEFINITIONS ===

User -> Order [1:M]
Admin -> User [inheritance]

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

Admin
==============================
* id : UUID [PK]
`)

	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Fatalf("output is not a standalone SVG:\n%s", out)
	}
	for _, want := range []string{
		">User</text>",
		">Order</text>",
		">Admin</text>",
		"id: UUID PK",
		"1:M",
		`stroke-dasharray="6,3"`, // inheritance edges are dashed
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestRenderEmbeddedEntityFill(t *testing.T) {
	out := render(t, `=== DATABASE SCHEMA ===

+ Core

=== Core ===

Address
/============================/
* street : String(255) [PK]
* city   : String(120)
`)

	if !strings.Contains(out, `fill="#eef3fb"`) {
		t.Error("embedded entity not rendered with its own fill")
	}
}

func TestRenderTruncatesLongEntities(t *testing.T) {
	var b strings.Builder
	b.WriteString("=== DATABASE SCHEMA ===\n\n+ Core\n\n=== Core ===\n\nBig\n==============================\n")
	b.WriteString("* id : UUID [PK]\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "- f%02d : Int\n", i)
	}

	out := render(t, b.String())
	if !strings.Contains(out, "more</text>") {
		t.Error("long entity not truncated with a summary row")
	}
}

func TestRenderSkipsUnresolvedEdges(t *testing.T) {
	out := render(t, `=== RELATIONSHIP DEFINITIONS ===

User -> Ghost [1:M]

=== DATABASE SCHEMA ===

+ Core

=== Core ===

User
==============================
* id : UUID [PK]
`)

	if strings.Contains(out, "<line x1=") && strings.Count(out, "<line") > 1 {
		// The only expected line element is the entity header underline.
		t.Errorf("unresolved relationship rendered an edge:\n%s", out)
	}
}

func TestRenderEscapesMarkup(t *testing.T) {
	doc := &schema.Document{
		Schema: schema.SchemaDefinition{
			Sections: []schema.ModuleSection{{
				Name: "M",
				Entities: []schema.Entity{{
					Name: "A<B>",
					Fields: []schema.Field{{
						Prefixes: []schema.Prefix{schema.Required},
						Names:    []string{"x"},
						Type: schema.DataType{
							Kind: schema.ArrayType,
							Elem: &schema.DataType{Kind: schema.SimpleType, Name: "Int"},
						},
					}},
				}},
			}},
		},
	}

	var buf bytes.Buffer
	Render(&buf, doc)
	out := buf.String()

	if !strings.Contains(out, "A&lt;B&gt;") {
		t.Error("entity name not escaped")
	}
	if !strings.Contains(out, "Array&lt;Int&gt;") {
		t.Error("type expression not escaped")
	}
}

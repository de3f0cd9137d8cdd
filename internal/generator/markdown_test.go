package generator

import (
	"strings"
	"testing"
)

func TestFormatMarkdown(t *testing.T) {
	doc := mustParse(t, sourceDocument)

	out := FormatMarkdown(doc, DefaultConfig())

	for _, want := range []string{
		"# commerce.dbschema",
		"## Relationships",
		"- User → Order (1:M): one account, many orders",
		"- Order → Product (N:M via OrderItem), association",
		"- Admin → User (inheritance)",
		"## Core",
		"Identity and access.",
		"### User",
		"- **id:** UUID, PK",
		"- **username, login:** String(80), UNIQUE",
		"- **status:** Enum(active,disabled), optional, DEFAULT active",
		"- **password_hash:** String(255), sensitive",
		"### Address (embedded)",
		"- **notes:** Text (free-form)",
		"#### relationships",
		"- **User:** account that placed the order",
		"#### features",
		"- soft delete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestFormatMarkdownWithoutComments(t *testing.T) {
	doc := mustParse(t, sourceDocument)
	cfg := DefaultConfig()
	cfg.IncludeComments = false

	out := FormatMarkdown(doc, cfg)
	for _, leaked := range []string{"(free-form)", "one account, many orders", "accounts"} {
		if strings.Contains(out, leaked) {
			t.Errorf("comment %q leaked into comment-free markdown:\n%s", leaked, out)
		}
	}
}

func TestFormatMarkdownSortEntities(t *testing.T) {
	doc := mustParse(t, sourceDocument)
	cfg := DefaultConfig()
	cfg.SortEntities = true

	out := FormatMarkdown(doc, cfg)
	admin := strings.Index(out, "### Admin")
	user := strings.Index(out, "### User")
	if admin < 0 || user < 0 || admin > user {
		t.Errorf("entities not sorted: Admin at %d, User at %d", admin, user)
	}
	if doc.Schema.Sections[0].Entities[0].Name != "User" {
		t.Error("SortEntities mutated the document")
	}
}

func TestFormatMarkdownWithoutHeader(t *testing.T) {
	doc := mustParse(t, `=== DATABASE SCHEMA ===

+ M

=== M ===

E
=====
* id : UUID [PK]
`)

	out := FormatMarkdown(doc, DefaultConfig())
	if !strings.HasPrefix(out, "# Database Schema\n") {
		t.Errorf("headerless document title:\n%s", out)
	}
	if strings.Contains(out, "## Relationships") {
		t.Error("empty relationship block rendered a section")
	}
}

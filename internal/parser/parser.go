// Package parser turns schema notation text into a schema.Document.
//
// Parsing is strictly line oriented and single pass: the reader never moves
// backwards and no rule needs more than one line of lookahead, which keeps
// the whole parse O(number of lines). A parse error aborts the document and
// carries the 1-based line number where parsing stopped.
package parser

import (
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

const (
	// HeaderExtension is the fixed file extension required in the optional
	// "@name" header line.
	HeaderExtension = ".dbschema"

	relationshipBlockHeader = "=== RELATIONSHIP DEFINITIONS ==="
	schemaBlockHeader       = "=== DATABASE SCHEMA ==="
)

// Parse parses a complete in-memory document. It is a pure function: no
// hidden state is shared between calls, so independent documents can be
// parsed concurrently.
func Parse(text string) (*schema.Document, error) {
	p := &docParser{r: newLineReader(text)}
	doc, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type docParser struct {
	r *lineReader
}

func (p *docParser) parseDocument() (*schema.Document, *Error) {
	doc := &schema.Document{}

	p.r.skipBlankAndComments(&doc.Comments)

	// Optional header: @name.dbschema
	if line, ok := p.r.peek(); ok && strings.HasPrefix(strings.TrimSpace(line), "@") {
		header, err := p.parseHeader()
		if err != nil {
			return nil, err
		}
		doc.Header = header
	}

	p.r.skipBlankAndComments(&doc.Comments)

	// Optional relationship definitions block.
	if line, ok := p.r.peek(); ok && strings.TrimSpace(line) == relationshipBlockHeader {
		p.r.advance()
		rels, err := p.parseRelationshipBlock()
		if err != nil {
			return nil, err
		}
		doc.Relationships = rels
	}

	p.r.skipBlankAndComments(&doc.Comments)

	// Required schema block.
	line, ok := p.r.peek()
	if !ok {
		return nil, errorf(p.r.line(), "unexpected end of input: expected %q", schemaBlockHeader)
	}
	if strings.TrimSpace(line) != schemaBlockHeader {
		return nil, errorf(p.r.line(), "expected %q, got %q", schemaBlockHeader, strings.TrimSpace(line))
	}
	p.r.advance()

	if err := p.parseSchemaDefinition(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *docParser) parseHeader() (*schema.Header, *Error) {
	line, _ := p.r.advance()
	content, _ := splitInlineComment(line)
	name := strings.TrimPrefix(content, "@")
	if !strings.HasSuffix(name, HeaderExtension) {
		return nil, errorf(p.r.line()-1, "invalid header %q: filename must end with %q", content, HeaderExtension)
	}
	base := strings.TrimSuffix(name, HeaderExtension)
	if !isIdentifier(base) {
		return nil, errorf(p.r.line()-1, "invalid header %q: %q is not a valid identifier", content, base)
	}
	return &schema.Header{Filename: name}, nil
}

func (p *docParser) parseRelationshipBlock() (*schema.RelationshipDefinitions, *Error) {
	defs := &schema.RelationshipDefinitions{}
	for {
		p.r.skipBlankAndComments(&defs.Comments)
		line, ok := p.r.peek()
		if !ok {
			return defs, nil
		}
		if strings.TrimSpace(line) == schemaBlockHeader {
			return defs, nil
		}
		p.r.advance()
		rel, err := parseRelationshipLine(line, p.r.line()-1)
		if err != nil {
			return nil, err
		}
		defs.Relationships = append(defs.Relationships, *rel)
	}
}

// parseRelationshipLine parses "A -> B [cardinality] (nature)? via C? # comment?".
// The bracketed cardinality is mandatory and its token set is closed: an
// unknown token is a hard error, not silently accepted.
func parseRelationshipLine(line string, lineNo int) (*schema.Relationship, *Error) {
	content, comment := splitInlineComment(line)

	arrow := strings.Index(content, "->")
	if arrow < 0 {
		return nil, errorf(lineNo, "malformed relationship line %q: missing '->'", content)
	}
	from := strings.TrimSpace(content[:arrow])
	rest := strings.TrimSpace(content[arrow+2:])
	if from == "" {
		return nil, errorf(lineNo, "malformed relationship line %q: missing source entity", content)
	}

	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return nil, errorf(lineNo, "malformed relationship line %q: missing [cardinality]", content)
	}
	close := strings.IndexByte(rest[open:], ']')
	if close < 0 {
		return nil, errorf(lineNo, "unclosed '[' in relationship line %q", content)
	}
	close += open

	to := strings.TrimSpace(rest[:open])
	if to == "" {
		return nil, errorf(lineNo, "malformed relationship line %q: missing target entity", content)
	}

	kind, ok := relationKind(strings.TrimSpace(rest[open+1 : close]))
	if !ok {
		return nil, errorf(lineNo, "unknown relationship cardinality %q", strings.TrimSpace(rest[open+1:close]))
	}

	rel := &schema.Relationship{From: from, To: to, Kind: kind, Comment: comment}

	tail := strings.TrimSpace(rest[close+1:])
	if strings.HasPrefix(tail, "(") {
		closeParen := strings.IndexByte(tail, ')')
		if closeParen < 0 {
			return nil, errorf(lineNo, "unclosed '(' in relationship line %q", content)
		}
		nature, ok := relationNature(strings.TrimSpace(tail[1:closeParen]))
		if !ok {
			return nil, errorf(lineNo, "unknown relationship nature %q", strings.TrimSpace(tail[1:closeParen]))
		}
		rel.Nature = nature
		tail = strings.TrimSpace(tail[closeParen+1:])
	}
	if strings.HasPrefix(tail, "via ") || strings.HasPrefix(tail, "via\t") {
		rel.Via = strings.TrimSpace(tail[4:])
		tail = ""
	}
	if tail != "" {
		return nil, errorf(lineNo, "unexpected text %q in relationship line", tail)
	}
	return rel, nil
}

func relationKind(token string) (schema.RelationKind, bool) {
	switch token {
	case "1:1":
		return schema.OneToOne, true
	case "1:M", "1:N":
		return schema.OneToMany, true
	case "N:M", "M:N", "M:M":
		return schema.ManyToMany, true
	case "inheritance":
		return schema.Inheritance, true
	case "composition":
		return schema.Composition, true
	case "aggregation":
		return schema.Aggregation, true
	}
	return "", false
}

func relationNature(token string) (schema.RelationNature, bool) {
	switch schema.RelationNature(token) {
	case schema.NatureComposition, schema.NatureAggregation, schema.NatureAssociation,
		schema.NatureInheritance, schema.NatureDependency:
		return schema.RelationNature(token), true
	}
	return "", false
}

func (p *docParser) parseSchemaDefinition(doc *schema.Document) *Error {
	p.r.skipBlankAndComments(&doc.Comments)

	// Module list: "+ Name # comment" lines.
	for {
		line, ok := p.r.peek()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "+") {
			break
		}
		p.r.advance()
		content, comment := splitInlineComment(strings.TrimPrefix(trimmed, "+"))
		doc.Schema.Modules = append(doc.Schema.Modules, schema.ModuleDecl{
			Name:    strings.TrimSpace(content),
			Comment: comment,
		})
		p.r.skipBlankAndComments(&doc.Comments)
	}

	// Module sections.
	for {
		p.r.skipBlankAndComments(&doc.Comments)
		line, ok := p.r.peek()
		if !ok {
			return nil
		}
		name, isModule := moduleHeaderName(line)
		if !isModule {
			return errorf(p.r.line(), "expected module section header, got %q", strings.TrimSpace(line))
		}
		p.r.advance()
		section, err := p.parseModuleSection(name)
		if err != nil {
			return err
		}
		doc.Schema.Sections = append(doc.Schema.Sections, *section)
	}
}

// moduleHeaderName recognizes "=== Name ===" lines, tolerant of
// variable-length trailing '=' runs, so "=== Core ===" and
// "=== Core ========" are equivalent.
func moduleHeaderName(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "=== ") {
		return "", false
	}
	name := strings.TrimPrefix(trimmed, "===")
	name = strings.TrimRight(name, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return name, true
}

// isSeparatorRow recognizes the row under an entity name: a run of '='
// (standard entity) or a '/'-delimited run of '=' (embedded entity).
func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) >= 2 && strings.Count(trimmed, "=") == len(trimmed) {
		return true
	}
	return isEmbeddedSeparator(trimmed)
}

func isEmbeddedSeparator(trimmed string) bool {
	if len(trimmed) < 3 || trimmed[0] != '/' || trimmed[len(trimmed)-1] != '/' {
		return false
	}
	inner := trimmed[1 : len(trimmed)-1]
	return len(inner) > 0 && strings.Count(inner, "=") == len(inner)
}

// looksLikeEntityHeader is the one-line-lookahead test used to tell a
// module description from the first entity name: the candidate is an entity
// name when the line after it is a separator row of conventional length
// (a run of at least five '=', or an embedded '/.../' row).
func looksLikeEntityHeader(next string) bool {
	trimmed := strings.TrimSpace(next)
	if len(trimmed) >= 5 && strings.Count(trimmed, "=") == len(trimmed) {
		return true
	}
	return isEmbeddedSeparator(trimmed)
}

func (p *docParser) parseModuleSection(name string) (*schema.ModuleSection, *Error) {
	section := &schema.ModuleSection{Name: name}

	p.r.skipBlankAndComments(nil)

	// Optional single-line description. The candidate is only a
	// description when the line after it is not a separator row.
	if cand, ok := p.r.peek(); ok {
		trimmed := strings.TrimSpace(cand)
		if _, isModule := moduleHeaderName(cand); !isModule && !isSeparatorRow(cand) {
			next, _ := p.r.peekNext()
			if !looksLikeEntityHeader(next) {
				p.r.advance()
				section.Description = trimmed
				p.r.skipBlankAndComments(nil)
			}
		}
	}

	// Entities until the next module header or end of input.
	for {
		p.r.skipBlankAndComments(nil)
		line, ok := p.r.peek()
		if !ok {
			return section, nil
		}
		if _, isModule := moduleHeaderName(line); isModule {
			return section, nil
		}
		entity, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		section.Entities = append(section.Entities, *entity)
	}
}

func (p *docParser) parseEntity() (*schema.Entity, *Error) {
	nameLine, _ := p.r.advance()
	name, comment := splitInlineComment(nameLine)
	if name == "" {
		return nil, errorf(p.r.line()-1, "missing entity name")
	}

	sepLine, ok := p.r.advance()
	if !ok {
		return nil, errorf(p.r.line(), "unexpected end of input: expected separator row after entity %q", name)
	}
	sep := strings.TrimSpace(sepLine)
	entity := &schema.Entity{Name: name, Comment: comment}
	switch {
	case len(sep) >= 2 && strings.Count(sep, "=") == len(sep):
		entity.Kind = schema.StandardEntity
	case isEmbeddedSeparator(sep):
		entity.Kind = schema.EmbeddedEntity
	default:
		return nil, errorf(p.r.line()-1, "malformed separator row %q under entity %q", sep, name)
	}

	// Fields.
	for {
		p.r.skipBlankAndComments(nil)
		line, ok := p.r.peek()
		if !ok {
			return entity, nil
		}
		trimmed := strings.TrimSpace(line)
		if _, isModule := moduleHeaderName(line); isModule {
			return entity, nil
		}
		if isSectionHeader(trimmed) {
			break
		}
		if next, _ := p.r.peekNext(); looksLikeEntityHeader(next) {
			// Next entity's name line.
			return entity, nil
		}
		p.r.advance()
		field, err := parseFieldLine(trimmed, p.r.line()-1)
		if err != nil {
			return nil, err
		}
		entity.Fields = append(entity.Fields, *field)
	}

	// Relationship and feature sub-sections.
	for {
		p.r.skipBlankAndComments(nil)
		line, ok := p.r.peek()
		if !ok {
			return entity, nil
		}
		trimmed := strings.TrimSpace(line)
		if !isSectionHeader(trimmed) {
			return entity, nil
		}
		p.r.advance()
		title := strings.ToLower(strings.TrimSuffix(trimmed, ":"))
		items := p.parseSectionItems()
		if title == "relationships" {
			sec := schema.RelationshipSection{Title: title}
			for _, item := range items {
				sec.Details = append(sec.Details, parseRelationshipDetail(item))
			}
			entity.RelationshipSections = append(entity.RelationshipSections, sec)
		} else {
			entity.FeatureSections = append(entity.FeatureSections, schema.FeatureSection{Title: title, Items: items})
		}
	}
}

// isSectionHeader recognizes the "relationships:" and "features:" headers
// that open an entity's loose annotation blocks.
func isSectionHeader(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	return lower == "relationships:" || lower == "features:"
}

func (p *docParser) parseSectionItems() []string {
	var items []string
	for {
		p.r.skipBlankAndComments(nil)
		line, ok := p.r.peek()
		if !ok {
			return items
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "- ") {
			// Anything that is not a "- " item ends the section.
			return items
		}
		p.r.advance()
		item, _ := splitInlineComment(strings.TrimPrefix(trimmed, "- "))
		if item != "" {
			items = append(items, item)
		}
	}
}

// parseRelationshipDetail splits an "Entity: description" item; items
// without a colon carry only free text.
func parseRelationshipDetail(item string) schema.RelationshipDetail {
	if colon := strings.Index(item, ":"); colon > 0 {
		name := strings.TrimSpace(item[:colon])
		if isIdentifier(name) {
			return schema.RelationshipDetail{
				Entity:      name,
				Description: strings.TrimSpace(item[colon+1:]),
			}
		}
	}
	return schema.RelationshipDetail{Description: item}
}

// parseFieldLine parses "prefixes names : type [constraints] # comment".
// The remainder after the colon is parsed right to left: the inline
// comment is sliced off first, then every bracket group, and what is left
// is the data-type expression.
func parseFieldLine(trimmed string, lineNo int) (*schema.Field, *Error) {
	prefixes, rest := parsePrefixes(trimmed)
	if len(prefixes) == 0 {
		return nil, errorf(lineNo, "field line %q must start with at least one prefix (%s)", trimmed, prefixSet)
	}

	colon := strings.Index(rest, ":")
	if colon < 0 {
		return nil, errorf(lineNo, "field line %q is missing ':' before the data type", trimmed)
	}

	var names []string
	for _, n := range strings.Split(rest[:colon], ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, errorf(lineNo, "field line %q is missing a field name", trimmed)
	}

	remainder, comment := splitInlineComment(rest[colon+1:])
	typeExpr, constraints, perr := extractConstraintGroups(remainder, lineNo)
	if perr != nil {
		return nil, perr
	}
	dataType, perr := parseDataType(typeExpr, lineNo)
	if perr != nil {
		return nil, perr
	}

	return &schema.Field{
		Prefixes:    prefixes,
		Names:       names,
		Type:        dataType,
		Constraints: constraints,
		Comment:     comment,
	}, nil
}

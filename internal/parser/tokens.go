package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/schemadoc/internal/schema"
)

// prefixSet is the closed set of field prefix sigils.
const prefixSet = "*-!@~>$"

var (
	identRe       = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	cardinalityRe = regexp.MustCompile(`^(-?\d+)\.\.(-?\d+|\*)$`)
)

// isIdentifier reports whether s is a bare identifier.
func isIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// splitInlineComment slices the inline comment off a line. The marker is
// the exact two-character sequence " #" (space then hash), not a bare '#',
// so that '#' characters inside constraint values survive.
func splitInlineComment(s string) (content, comment string) {
	if i := strings.Index(s, " #"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:])
	}
	return strings.TrimSpace(s), ""
}

// parsePrefixes reads prefix sigils greedily from the start of the line.
// Sigils may be written run together ("*-") or space separated ("* -");
// spaces are consumed only when another sigil follows, so the field name
// always starts the remainder. At least one prefix is mandatory on a
// field line; the caller enforces that.
func parsePrefixes(s string) (prefixes []schema.Prefix, rest string) {
	i := 0
	for i < len(s) {
		if strings.ContainsRune(prefixSet, rune(s[i])) {
			prefixes = append(prefixes, schema.Prefix(s[i]))
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == ' ' {
			j++
		}
		if j == i || j == len(s) || !strings.ContainsRune(prefixSet, rune(s[j])) {
			break
		}
		i = j
	}
	return prefixes, s[i:]
}

// extractConstraintGroups removes every well-formed [...] group from the
// type remainder and parses each as a constraint list. Bracket groups that
// look like a cardinality bound (digits..digits or digits..*) are left in
// place: they belong to a relationship-array type, not to the constraint
// list. Groups are processed left to right and their contents concatenated.
func extractConstraintGroups(s string, line int) (typeExpr string, constraints []schema.Constraint, err *Error) {
	var rest strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '[' {
			rest.WriteByte(c)
			i++
			continue
		}
		close := strings.IndexByte(s[i:], ']')
		if close < 0 {
			return "", nil, errorf(line, "unclosed '[' in %q", s)
		}
		inner := s[i+1 : i+close]
		if cardinalityRe.MatchString(strings.TrimSpace(inner)) {
			// Relationship-array bound, part of the data type.
			rest.WriteString(s[i : i+close+1])
		} else {
			constraints = append(constraints, parseConstraintList(inner)...)
		}
		i += close + 1
	}
	return strings.TrimSpace(rest.String()), constraints, nil
}

// parseConstraintList parses the inside of one bracket group. Items are
// comma separated; each is a name optionally carrying a ":value" suffix.
// A comma item without a colon that follows a valued constraint is treated
// as a continuation of that value, so [ENUM:red,green,blue] yields one
// constraint whose value is the comma-joined list.
func parseConstraintList(inner string) []schema.Constraint {
	var out []schema.Constraint
	for _, item := range strings.Split(inner, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if colon := strings.Index(item, ":"); colon >= 0 {
			name := strings.TrimSpace(item[:colon])
			value := strings.TrimSpace(item[colon+1:])
			out = append(out, schema.Constraint{Name: name, Value: &value})
			continue
		}
		if n := len(out); n > 0 && out[n-1].Value != nil {
			joined := *out[n-1].Value + "," + item
			out[n-1].Value = &joined
			continue
		}
		out = append(out, schema.Constraint{Name: item})
	}
	return out
}

// parseDataType parses a data-type expression. The order of checks matters:
// more specific surface forms are tried before falling back to a simple
// type. A bare identifier is deliberately left as SimpleType even when it
// names an embedded entity; that distinction is resolved after parsing.
func parseDataType(expr string, line int) (schema.DataType, *Error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return schema.DataType{}, errorf(line, "missing data type")
	}

	// Array<T>, recursive.
	if strings.HasPrefix(expr, "Array<") {
		inner, perr := matchAngle(expr[len("Array"):], line)
		if perr != nil {
			return schema.DataType{}, perr
		}
		elem, perr := parseDataType(inner, line)
		if perr != nil {
			return schema.DataType{}, perr
		}
		return schema.DataType{Kind: schema.ArrayType, Elem: &elem}, nil
	}

	// Name[min..max] relationship array.
	if open := strings.IndexByte(expr, '['); open > 0 && strings.HasSuffix(expr, "]") {
		name := expr[:open]
		if !isIdentifier(name) {
			return schema.DataType{}, errorf(line, "invalid data type %q", expr)
		}
		card, perr := parseCardinality(expr[open+1:len(expr)-1], line)
		if perr != nil {
			return schema.DataType{}, perr
		}
		return schema.DataType{Kind: schema.RelationshipArrayType, Entity: name, Card: card}, nil
	}

	// JSON literal, optionally with nested members: JSON{a:String, b:JSON{...}}.
	if expr == "JSON" {
		return schema.DataType{Kind: schema.JSONObjectType}, nil
	}
	if strings.HasPrefix(expr, "JSON{") {
		fields, perr := parseJSONObject(expr[len("JSON"):], line)
		if perr != nil {
			return schema.DataType{}, perr
		}
		return schema.DataType{Kind: schema.JSONObjectType, Object: fields}, nil
	}

	// Name(p1,p2,...) parametric.
	if open := strings.IndexByte(expr, '('); open > 0 && strings.HasSuffix(expr, ")") {
		name := expr[:open]
		if !isIdentifier(name) {
			return schema.DataType{}, errorf(line, "invalid data type %q", expr)
		}
		inner := expr[open+1 : len(expr)-1]
		var params []string
		for _, p := range strings.Split(inner, ",") {
			if p = strings.TrimSpace(p); p != "" {
				params = append(params, p)
			}
		}
		return schema.DataType{Kind: schema.ParametricType, Name: name, Params: params}, nil
	}

	// Bare identifier: a simple type or an embedded-entity reference.
	if !isIdentifier(expr) {
		return schema.DataType{}, errorf(line, "invalid data type %q", expr)
	}
	return schema.DataType{Kind: schema.SimpleType, Name: expr}, nil
}

// matchAngle takes a string starting with '<' and returns the content up to
// the matching '>', which must close the expression.
func matchAngle(s string, line int) (string, *Error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				if i != len(s)-1 {
					return "", errorf(line, "unexpected text after Array<...>: %q", s[i+1:])
				}
				return s[1:i], nil
			}
		}
	}
	return "", errorf(line, "unclosed 'Array<' in %q", s)
}

// parseCardinality parses "min..max" where max may be '*' for unlimited.
// Bound sanity (min >= 0, max >= min) is a validator concern, not a parse
// concern; only non-integer bounds fail here.
func parseCardinality(s string, line int) (*schema.Cardinality, *Error) {
	m := cardinalityRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, errorf(line, "malformed cardinality %q (expected min..max or min..*)", s)
	}
	min, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, errorf(line, "non-integer cardinality bound %q", m[1])
	}
	card := &schema.Cardinality{Min: min}
	if m[2] == "*" {
		card.Unlimited = true
		return card, nil
	}
	max, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, errorf(line, "non-integer cardinality bound %q", m[2])
	}
	card.Max = max
	return card, nil
}

// parseJSONObject takes a string starting with '{' and parses the
// comma-separated "name:Type" members up to the matching '}'.
func parseJSONObject(s string, line int) ([]schema.JSONField, *Error) {
	if len(s) == 0 || s[0] != '{' {
		return nil, errorf(line, "malformed JSON object type %q", s)
	}
	depth := 0
	end := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, errorf(line, "unclosed '{' in JSON object type")
	}
	if end != len(s)-1 {
		return nil, errorf(line, "unexpected text after JSON object type: %q", s[end+1:])
	}

	var fields []schema.JSONField
	for _, member := range splitTopLevel(s[1:end], ',') {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		colon := strings.Index(member, ":")
		if colon <= 0 {
			return nil, errorf(line, "malformed JSON object member %q (expected name:Type)", member)
		}
		name := strings.TrimSpace(member[:colon])
		typ, perr := parseDataType(member[colon+1:], line)
		if perr != nil {
			return nil, perr
		}
		fields = append(fields, schema.JSONField{Name: name, Type: typ})
	}
	return fields, nil
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets, braces, parentheses, or angle brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '(', '[', '<':
			depth++
		case '}', ')', ']', '>':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

package parser

import (
	"reflect"
	"testing"

	"github.com/tordrt/schemadoc/internal/schema"
)

func TestParsePrefixes(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantPrefixes []schema.Prefix
		wantRest     string
	}{
		{
			name:         "single prefix",
			in:           "* id : UUID",
			wantPrefixes: []schema.Prefix{schema.Required},
			wantRest:     " id : UUID",
		},
		{
			name:         "run-together prefixes",
			in:           "*! id : UUID",
			wantPrefixes: []schema.Prefix{schema.Required, schema.Indexed},
			wantRest:     " id : UUID",
		},
		{
			name:         "space-separated prefixes",
			in:           "* - bad_field : String",
			wantPrefixes: []schema.Prefix{schema.Required, schema.Optional},
			wantRest:     " bad_field : String",
		},
		{
			name:         "spaces before the name are not prefix separators",
			in:           "*   id : UUID",
			wantPrefixes: []schema.Prefix{schema.Required},
			wantRest:     "   id : UUID",
		},
		{
			name:     "no prefixes",
			in:       "id : UUID",
			wantRest: "id : UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes, rest := parsePrefixes(tt.in)
			if !reflect.DeepEqual(prefixes, tt.wantPrefixes) {
				t.Errorf("parsePrefixes(%q) prefixes = %v, want %v", tt.in, prefixes, tt.wantPrefixes)
			}
			if rest != tt.wantRest {
				t.Errorf("parsePrefixes(%q) rest = %q, want %q", tt.in, rest, tt.wantRest)
			}
		})
	}
}

func TestSplitInlineComment(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantContent string
		wantComment string
	}{
		{
			name:        "no comment",
			in:          "* id : Int",
			wantContent: "* id : Int",
		},
		{
			name:        "trailing comment",
			in:          "* id : Int # the key",
			wantContent: "* id : Int",
			wantComment: "the key",
		},
		{
			name:        "hash without leading space is content",
			in:          "- color : String [DEFAULT:#fff]",
			wantContent: "- color : String [DEFAULT:#fff]",
		},
		{
			name:        "only comment",
			in:          " # hello",
			wantContent: "",
			wantComment: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, comment := splitInlineComment(tt.in)
			if content != tt.wantContent || comment != tt.wantComment {
				t.Errorf("splitInlineComment(%q) = (%q, %q), want (%q, %q)",
					tt.in, content, comment, tt.wantContent, tt.wantComment)
			}
		})
	}
}

func strptr(s string) *string { return &s }

func TestParseConstraintList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []schema.Constraint
	}{
		{
			name: "bare constraints",
			in:   "PK,UNIQUE",
			want: []schema.Constraint{{Name: "PK"}, {Name: "UNIQUE"}},
		},
		{
			name: "valued constraint",
			in:   "DEFAULT:0",
			want: []schema.Constraint{{Name: "DEFAULT", Value: strptr("0")}},
		},
		{
			name: "comma continuation joins the previous value",
			in:   "ENUM:red,green,blue",
			want: []schema.Constraint{{Name: "ENUM", Value: strptr("red,green,blue")}},
		},
		{
			name: "continuation stops at the next valued item",
			in:   "ENUM:a,b,MAX:10",
			want: []schema.Constraint{
				{Name: "ENUM", Value: strptr("a,b")},
				{Name: "MAX", Value: strptr("10")},
			},
		},
		{
			name: "bare item before any value stays a constraint",
			in:   "PK,DEFAULT:now",
			want: []schema.Constraint{
				{Name: "PK"},
				{Name: "DEFAULT", Value: strptr("now")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseConstraintList(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("parseConstraintList(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i].Name != tt.want[i].Name {
					t.Errorf("constraint[%d].Name = %q, want %q", i, got[i].Name, tt.want[i].Name)
				}
				gotV, wantV := got[i].Value, tt.want[i].Value
				if (gotV == nil) != (wantV == nil) || (gotV != nil && *gotV != *wantV) {
					t.Errorf("constraint[%d].Value mismatch", i)
				}
			}
		})
	}
}

func TestExtractConstraintGroups(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantType     string
		wantNumConst int
	}{
		{
			name:         "plain type",
			in:           " Int ",
			wantType:     "Int",
			wantNumConst: 0,
		},
		{
			name:         "type with constraints",
			in:           " UUID [PK]",
			wantType:     "UUID",
			wantNumConst: 1,
		},
		{
			name:         "cardinality group stays in the type",
			in:           " Category[0..*]",
			wantType:     "Category[0..*]",
			wantNumConst: 0,
		},
		{
			name:         "cardinality and constraints together",
			in:           " Item[1..5] [UNIQUE]",
			wantType:     "Item[1..5]",
			wantNumConst: 1,
		},
		{
			name:         "multiple constraint groups concatenate",
			in:           " Int [PK] [UNIQUE,INDEX]",
			wantType:     "Int",
			wantNumConst: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typeExpr, constraints, perr := extractConstraintGroups(tt.in, 1)
			if perr != nil {
				t.Fatalf("extractConstraintGroups(%q) failed: %v", tt.in, perr)
			}
			if typeExpr != tt.wantType {
				t.Errorf("type expression = %q, want %q", typeExpr, tt.wantType)
			}
			if len(constraints) != tt.wantNumConst {
				t.Errorf("constraints = %+v, want %d entries", constraints, tt.wantNumConst)
			}
		})
	}
}

func TestParseDataType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want schema.DataType
	}{
		{
			name: "simple type",
			in:   "String",
			want: schema.DataType{Kind: schema.SimpleType, Name: "String"},
		},
		{
			name: "bare entity name stays simple",
			in:   "Address",
			want: schema.DataType{Kind: schema.SimpleType, Name: "Address"},
		},
		{
			name: "parametric",
			in:   "Decimal(10,2)",
			want: schema.DataType{Kind: schema.ParametricType, Name: "Decimal", Params: []string{"10", "2"}},
		},
		{
			name: "array",
			in:   "Array<String>",
			want: schema.DataType{
				Kind: schema.ArrayType,
				Elem: &schema.DataType{Kind: schema.SimpleType, Name: "String"},
			},
		},
		{
			name: "nested array",
			in:   "Array<Array<Int>>",
			want: schema.DataType{
				Kind: schema.ArrayType,
				Elem: &schema.DataType{
					Kind: schema.ArrayType,
					Elem: &schema.DataType{Kind: schema.SimpleType, Name: "Int"},
				},
			},
		},
		{
			name: "opaque JSON",
			in:   "JSON",
			want: schema.DataType{Kind: schema.JSONObjectType},
		},
		{
			name: "JSON with members",
			in:   "JSON{a:Int, b:String}",
			want: schema.DataType{
				Kind: schema.JSONObjectType,
				Object: []schema.JSONField{
					{Name: "a", Type: schema.DataType{Kind: schema.SimpleType, Name: "Int"}},
					{Name: "b", Type: schema.DataType{Kind: schema.SimpleType, Name: "String"}},
				},
			},
		},
		{
			name: "nested JSON member",
			in:   "JSON{geo:JSON{lat:Float, lng:Float}}",
			want: schema.DataType{
				Kind: schema.JSONObjectType,
				Object: []schema.JSONField{
					{
						Name: "geo",
						Type: schema.DataType{
							Kind: schema.JSONObjectType,
							Object: []schema.JSONField{
								{Name: "lat", Type: schema.DataType{Kind: schema.SimpleType, Name: "Float"}},
								{Name: "lng", Type: schema.DataType{Kind: schema.SimpleType, Name: "Float"}},
							},
						},
					},
				},
			},
		},
		{
			name: "relationship array",
			in:   "Stop[1..10]",
			want: schema.DataType{
				Kind:   schema.RelationshipArrayType,
				Entity: "Stop",
				Card:   &schema.Cardinality{Min: 1, Max: 10},
			},
		},
		{
			name: "unlimited relationship array",
			in:   "Tag[0..*]",
			want: schema.DataType{
				Kind:   schema.RelationshipArrayType,
				Entity: "Tag",
				Card:   &schema.Cardinality{Min: 0, Unlimited: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, perr := parseDataType(tt.in, 1)
			if perr != nil {
				t.Fatalf("parseDataType(%q) failed: %v", tt.in, perr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseDataType(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDataTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "unclosed angle", in: "Array<Int"},
		{name: "text after angle", in: "Array<Int>x"},
		{name: "unclosed brace", in: "JSON{a:Int"},
		{name: "member without colon", in: "JSON{broken}"},
		{name: "space in name", in: "Big Int"},
		{name: "bad cardinality", in: "Item[one..two]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, perr := parseDataType(tt.in, 1); perr == nil {
				t.Errorf("parseDataType(%q) succeeded, want error", tt.in)
			}
		})
	}
}

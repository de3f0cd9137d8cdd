package main

import (
	"os"
	"strings"
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "single item",
			in:   "users",
			want: []string{"users"},
		},
		{
			name: "multiple items",
			in:   "users,posts,comments",
			want: []string{"users", "posts", "comments"},
		},
		{
			name: "items with spaces",
			in:   "users, posts, comments",
			want: []string{"users", "posts", "comments"},
		},
		{
			name: "empty string",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.in)

			if len(got) != len(tt.want) {
				t.Errorf("splitList() returned %d items, want %d", len(got), len(tt.want))
				return
			}
			for i, item := range got {
				if item != tt.want[i] {
					t.Errorf("splitList() item[%d] = %s, want %s", i, item, tt.want[i])
				}
			}
		})
	}
}

func TestLoadDocumentParseError(t *testing.T) {
	path := t.TempDir() + "/broken.dbschema"
	text := "@broken.dbschema\n\n=== DATABASE SCHEMA ===\n\n+ Core\n\n=== Core ===\n\nUser\n=====\n* id : Array<String\n"
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadDocument(path)
	if err == nil {
		t.Fatal("loadDocument() succeeded on malformed input")
	}
	if !strings.HasPrefix(err.Error(), path+":") {
		t.Errorf("loadDocument() error = %q, want prefix %q", err.Error(), path+":")
	}
}

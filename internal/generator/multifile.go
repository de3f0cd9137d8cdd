package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tordrt/schemadoc/internal/schema"
)

// MultiFileWriter splits a document across one notation file per module
// plus an overview file listing modules and their entities.
type MultiFileWriter struct {
	OutputDir string
	Config    Config
}

// NewMultiFileWriter creates a multi-file writer for the given directory.
func NewMultiFileWriter(outputDir string, config Config) *MultiFileWriter {
	return &MultiFileWriter{OutputDir: outputDir, Config: config}
}

// Write renders the document into the output directory, creating it if
// necessary.
func (w *MultiFileWriter) Write(doc *schema.Document) error {
	if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.writeOverview(doc); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, section := range doc.Schema.Sections {
		if err := w.writeModuleFile(doc, section); err != nil {
			return fmt.Errorf("failed to write module file for %s: %w", section.Name, err)
		}
	}
	return nil
}

func (w *MultiFileWriter) writeOverview(doc *schema.Document) error {
	file, err := os.Create(filepath.Join(w.OutputDir, "_overview.txt"))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(file, "Each module has a file: <module_name>%s\n\n", fileExtension)

	sections := make([]schema.ModuleSection, len(doc.Schema.Sections))
	copy(sections, doc.Schema.Sections)
	sort.Slice(sections, func(i, j int) bool { return sections[i].Name < sections[j].Name })

	for _, section := range sections {
		_, _ = fmt.Fprintf(file, "%s (%d entities)\n", section.Name, len(section.Entities))
		for _, entity := range section.Entities {
			marker := ""
			if entity.Kind == schema.EmbeddedEntity {
				marker = " (embedded)"
			}
			_, _ = fmt.Fprintf(file, "  %s%s\n", entity.Name, marker)
		}
	}
	return nil
}

const fileExtension = ".dbschema"

// writeModuleFile renders one module as a standalone, parseable document.
func (w *MultiFileWriter) writeModuleFile(doc *schema.Document, section schema.ModuleSection) error {
	file, err := os.Create(filepath.Join(w.OutputDir, section.Name+fileExtension))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	part := &schema.Document{
		Header: doc.Header,
		Schema: schema.SchemaDefinition{
			Modules:  []schema.ModuleDecl{{Name: section.Name}},
			Sections: []schema.ModuleSection{section},
		},
	}
	return New(file, w.Config).Generate(part)
}

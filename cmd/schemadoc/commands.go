package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemadoc/internal/diagram"
	"github.com/tordrt/schemadoc/internal/generator"
	"github.com/tordrt/schemadoc/internal/stats"
	"github.com/tordrt/schemadoc/internal/validator"
)

var (
	fmtWrite     bool
	fmtOutputDir string
	fmtMarkdown  bool
	diagramOut   string
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a notation file for errors and warnings",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Rewrite a notation file in canonical layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Print summary statistics for a notation file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var diagramCmd = &cobra.Command{
	Use:   "diagram <file>",
	Short: "Render a notation file as an SVG entity diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagram,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write result back to the source file instead of stdout")
	fmtCmd.Flags().StringVarP(&fmtOutputDir, "output-dir", "d", "", "Split output into one file per module under this directory")
	fmtCmd.Flags().BoolVarP(&fmtMarkdown, "markdown", "m", false, "Render a markdown reference page instead of notation")
	diagramCmd.Flags().StringVarP(&diagramOut, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(validateCmd, fmtCmd, statsCmd, diagramCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	result := validator.ValidateWith(doc, cfg.ValidatorOptions())
	for _, e := range result.Errors {
		fmt.Printf("error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("%d errors, %d warnings\n", len(result.Errors), len(result.Warnings))

	if !result.Valid {
		return fmt.Errorf("%s is not valid", args[0])
	}
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtWrite && fmtOutputDir != "" {
		return fmt.Errorf("cannot use both --write and --output-dir")
	}
	if fmtMarkdown && (fmtWrite || fmtOutputDir != "") {
		// Markdown does not parse back; writing it over the source or
		// into module files would destroy the notation.
		return fmt.Errorf("--markdown writes to stdout only")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	if fmtMarkdown {
		fmt.Print(generator.FormatMarkdown(doc, cfg.Format))
		return nil
	}

	if fmtOutputDir != "" {
		w := generator.MultiFileWriter{OutputDir: fmtOutputDir, Config: cfg.Format}
		if err := w.Write(doc); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	text := generator.Format(doc, cfg.Format)
	if fmtWrite {
		if err := os.WriteFile(args[0], []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}
		return nil
	}
	fmt.Print(text)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	stats.Collect(doc).WriteText(os.Stdout)
	return nil
}

func runDiagram(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	writer := os.Stdout
	if diagramOut != "" {
		f, err := os.Create(diagramOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	diagram.Render(writer, doc)
	return nil
}

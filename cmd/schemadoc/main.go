package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemadoc/internal/config"
	"github.com/tordrt/schemadoc/internal/parser"
	"github.com/tordrt/schemadoc/internal/schema"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "schemadoc",
	Short: "Parse, validate, and format schema notation files",
	Long: `Schemadoc works with database schema documentation written in a compact
line-oriented notation: entities with prefixed fields, bracketed
constraints, and a relationship definitions block.

It validates notation files, rewrites them in canonical layout, reports
statistics, renders entity diagrams, imports schemas from live databases,
and serves a live preview while you edit.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .schemadoc.yaml if present)")
}

// loadConfig reads the config file, falling back to defaults when no file
// is given and the default name does not exist.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault("")
}

// loadDocument reads and parses one notation file. Parse errors are
// rewritten as file:line: message so editors can jump to them.
func loadDocument(path string) (*schema.Document, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := parser.Parse(string(text))
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%s:%d: %s", path, perr.Line, perr.Message)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

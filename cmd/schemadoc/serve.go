package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tordrt/schemadoc/internal/preview"
)

var (
	serveAddr    string
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a live preview of a notation file",
	Long: `Serve watches a notation file and serves its formatted text, an SVG
diagram, statistics, and the current validation report over HTTP. The
file is re-parsed whenever it changes on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8099", "Listen address")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if serveVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	holder, err := preview.NewHolder(args[0], cfg.ValidatorOptions(), logger)
	if err != nil {
		return err
	}
	defer holder.Stop()

	if err := holder.Watch(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}

	server := preview.NewServer(holder, cfg.Format, logger)
	return server.ListenAndServe(serveAddr)
}

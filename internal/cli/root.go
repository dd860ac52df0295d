// Package cli provides the command-line interface for smartmedia.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hbomb79/smartmedia/internal"
	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/extract"
	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

const defaultConfigPath = "~/.config/smartmedia/config.yaml"

type (
	// smartmedia is the subset of the application used by the CLI.
	smartmedia interface {
		ConnectDatabase() error
		ConnectCatalog(context.Context) error
		Close() error

		RunExtraction(context.Context) (*extract.Result, error)
		Reconcile(context.Context) (*extract.ReconcileResult, error)

		Regions() []string
		DefaultRegion() string
		GetPricing(ctx context.Context, region string) (*cost.Pricing, error)
		Report(ctx context.Context, region string) (*cost.Summary, error)
		EstimateFile(ctx context.Context, region string, contentHash string) (*cost.FileEstimate, error)

		Serve(context.Context) error
	}

	// connection describes which external resources a command needs
	// before it can run.
	connection int

	rootOptions struct {
		configPath string
		logLevel   string
		output     string
	}
)

const (
	needsDatabase connection = 1 << iota
	needsCatalog
)

var newApp = func(config internal.Config) (smartmedia, error) {
	return internal.New(config)
}

// Execute builds the command tree and runs the command given on the
// command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "smartmedia",
		Short: "Media metadata extraction and processing cost estimation",
		Long: `smartmedia extracts technical metadata (duration, streams, resolution) from the
media files of a content-addressed file store, and estimates what it would cost to
transcode, analyse and transcribe that media using live cloud pricing.

Configuration is read from a YAML file, with environment variables taking precedence.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "minimum log level (verbose, debug, info, warning, error)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format (text, json, yaml)")

	root.AddCommand(
		newExtractCmd(opts),
		newReconcileCmd(opts),
		newPricingCmd(opts),
		newReportCmd(opts),
		newEstimateCmd(opts),
		newServeCmd(opts),
	)

	return root
}

// loadConfig reads the configuration file if one exists, and otherwise
// falls back to configuration from the environment alone.
func (opts *rootOptions) loadConfig() (internal.Config, error) {
	var config internal.Config
	path := opts.configPath
	if path == defaultConfigPath {
		if _, err := os.Stat(expandHome(path)); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	var err error
	if path == "" {
		err = config.LoadFromEnv()
	} else {
		err = config.LoadFromFile(path)
	}
	if err != nil {
		return config, err
	}

	level := config.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger.SetMinLoggingLevel(logger.ParseLevel(level).Level())

	return config, nil
}

// bootstrap loads the configuration and constructs the application,
// connecting to the resources required. The returned cleanup function
// must be called once the command completes.
func (opts *rootOptions) bootstrap(ctx context.Context, needs connection) (smartmedia, func(), error) {
	config, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	app, err := newApp(config)
	if err != nil {
		return nil, nil, fmt.Errorf("construct smartmedia: %w", err)
	}

	cleanup := func() {}
	if needs&needsDatabase != 0 {
		if err := app.ConnectDatabase(); err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		cleanup = func() {
			if err := app.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	}

	if needs&needsCatalog != 0 {
		if err := app.ConnectCatalog(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to pricing catalog: %w", err)
		}
	}

	return app, cleanup, nil
}

// render writes the value using the output format selected, falling
// back to the text renderer provided.
func (opts *rootOptions) render(w io.Writer, value any, text func(io.Writer) error) error {
	switch opts.output {
	case "json":
		return writeJSON(w, value)
	case "yaml":
		return writeYAML(w, value)
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}

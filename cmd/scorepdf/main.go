package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gompdf/scorepdf/internal/config"
	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/preview"
	"github.com/gompdf/scorepdf/internal/server"
	"github.com/gompdf/scorepdf/internal/storage"
	"github.com/gompdf/scorepdf/pkg/api"
	"github.com/gompdf/scorepdf/pkg/logger"
	"github.com/gompdf/scorepdf/pkg/metrics"
)

// Exit codes by failure kind.
const (
	exitFailure      = 1
	exitValidation   = 2
	exitIO           = 3
	exitPrecondition = 70
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		err = serve(ctx, os.Args[2:])
	} else {
		err = generate(ctx, os.Args[1:])
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch failure.KindOf(err) {
	case failure.KindValidation:
		return exitValidation
	case failure.KindIO:
		return exitIO
	case failure.KindPrecondition:
		return exitPrecondition
	default:
		return exitFailure
	}
}

// setup loads configuration and applies the log level.
func setup(ctx context.Context, path string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, failure.Validation("log level", err)
	}
	return cfg, nil
}

func generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scorepdf", flag.ContinueOnError)
	var (
		configFile  = fs.String("config", "", "Configuration file path")
		inputFile   = fs.String("input", "", "Input score file (JSON or YAML), path or URL")
		outputFile  = fs.String("output", "", "Output PDF file path")
		chartsDir   = fs.String("charts-dir", "", "Directory to keep rendered chart images")
		orientation = fs.String("orientation", "", "Input top level: auto, attribute or individual")
		showPreview = fs.Bool("preview", false, "Print an HTML preview of the scores instead of a report")
		verbose     = fs.Bool("verbose", false, "Enable verbose logging")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: scorepdf [flags]\n       scorepdf serve [flags]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return failure.Validation("flags", err)
	}

	if *inputFile == "" {
		fs.Usage()
		return failure.Validationf("flags", "input file is required")
	}

	cfg, err := setup(ctx, *configFile, *verbose)
	if err != nil {
		return err
	}
	if *outputFile != "" {
		cfg.Output = *outputFile
	}
	if *chartsDir != "" {
		cfg.ChartsDir = *chartsDir
	}
	if *orientation != "" {
		cfg.Orientation = *orientation
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	opts := api.OptionsFromConfig(cfg)
	opts.Logger = logger.Named("scorepdf")
	if cfg.ChartsDir != "" {
		store, err := storage.NewFSStore(cfg.ChartsDir)
		if err != nil {
			return err
		}
		opts.ChartStore = store
	}
	gen := api.NewWithOptions(opts)

	if *showPreview {
		t, err := gen.Load(ctx, *inputFile)
		if err != nil {
			return err
		}
		return preview.Render(os.Stdout, t)
	}

	res, err := gen.GenerateFile(ctx, *inputFile, cfg.Output)
	if err != nil {
		return err
	}
	if *verbose {
		fmt.Printf("Wrote %s (%d pages)\n", cfg.Output, res.Pages)
	}
	return nil
}

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scorepdf serve", flag.ContinueOnError)
	var (
		configFile = fs.String("config", "", "Configuration file path")
		addr       = fs.String("addr", "", "Listen address, overrides the configured one")
		verbose    = fs.Bool("verbose", false, "Enable verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return failure.Validation("flags", err)
	}

	cfg, err := setup(ctx, *configFile, *verbose)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	store, err := storage.NewFSStore(cfg.StorageDir)
	if err != nil {
		return err
	}
	m := metrics.NewManager()

	opts := api.OptionsFromConfig(cfg)
	opts.Logger = logger.Named("scorepdf")
	opts.Metrics = m

	srv := server.New(api.NewWithOptions(opts), store,
		server.WithLogger(logger.Get()),
		server.WithMetrics(m),
		server.WithOrigins(cfg.Origins()),
	)
	return srv.ListenAndServe(ctx, cfg.Addr)
}

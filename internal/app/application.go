// Package app wires configuration, logging, codecs and the processor into
// the batch application driven by cmd/xla.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/KickHuynh/XuLyAnhSo/internal/benchmark"
	"github.com/KickHuynh/XuLyAnhSo/internal/config"
	"github.com/KickHuynh/XuLyAnhSo/internal/imageio"
	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/operations"
	"github.com/KickHuynh/XuLyAnhSo/internal/shutdown"
	"github.com/KickHuynh/XuLyAnhSo/internal/timing"
)

const (
	AppName    = "xla"
	AppVersion = "1.0.0"
)

type Application struct {
	Config    config.Config
	Log       logger.Logger
	Codec     imageio.Codec
	Processor *operations.Processor
	Bench     *benchmark.Runner
	Tracker   *timing.Tracker
	Shutdown  *shutdown.Manager
	lifecycle *Lifecycle
}

// Options carry settings that only come from the command line.
type Options struct {
	// LogOutput receives JSON logs; console logs always go to stderr.
	LogOutput io.Writer
	// OutputDir overrides the configured output directory when set.
	OutputDir string
	// Jobs overrides the configured concurrency when positive.
	Jobs int
}

func NewApplication(ctx context.Context, cfg config.Config, opts Options) (*Application, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	log, err := logger.New(cfg.Log.Format, out, level)
	if err != nil {
		return nil, err
	}

	codec, err := imageio.New(cfg.Codec, log)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir != "" {
		cfg.Paths.OutputDir = opts.OutputDir
	}
	if opts.Jobs > 0 {
		cfg.Jobs = opts.Jobs
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.NumCPU()
	}

	tracker := timing.NewTracker()
	processor := operations.NewProcessor(log, tracker)
	sm := shutdown.NewManager(ctx, log)

	a := &Application{
		Config:    cfg,
		Log:       log,
		Codec:     codec,
		Processor: processor,
		Bench:     benchmark.NewRunner(processor, log),
		Tracker:   tracker,
		Shutdown:  sm,
	}
	a.lifecycle = NewLifecycle(a)
	sm.Register(a.lifecycle)

	log.Info("Application", "application initialized", map[string]interface{}{
		"version":    AppVersion,
		"codec":      codec.Name(),
		"jobs":       cfg.Jobs,
		"output_dir": cfg.Paths.OutputDir,
		"go_version": runtime.Version(),
	})
	return a, nil
}

// Context is cancelled when the application begins shutting down.
func (a *Application) Context() context.Context {
	return a.Shutdown.Context()
}

// Close runs the shutdown sequence.
func (a *Application) Close() {
	a.Shutdown.Shutdown()
}

// Inputs returns args when given, otherwise every image in the configured
// input directory.
func (a *Application) Inputs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	paths, err := imageio.ListImages(a.Config.Paths.InputDir, a.Config.Paths.Extensions)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", a.Config.Paths.InputDir)
	}
	return paths, nil
}

func (a *Application) ensureOutputDir() error {
	if err := os.MkdirAll(a.Config.Paths.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

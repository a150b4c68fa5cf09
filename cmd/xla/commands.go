package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KickHuynh/XuLyAnhSo/internal/app"
	"github.com/KickHuynh/XuLyAnhSo/internal/benchmark"
	"github.com/KickHuynh/XuLyAnhSo/internal/config"
	"github.com/KickHuynh/XuLyAnhSo/internal/operations"
)

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	codec      string
	outDir     string
	jobs       int
	fit        bool
	ext        string
	pair       bool
	resize     bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           app.AppName,
		Short:         "Digital image processing toolkit",
		Long:          "xla applies intensity transforms, spatial and frequency filters and binary morphology to images.",
		Version:       app.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML or TOML configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "console or json")
	pf.StringVar(&flags.codec, "codec", "", "image codec: native or opencv")
	pf.StringVarP(&flags.outDir, "out", "o", "", "output directory")
	pf.IntVarP(&flags.jobs, "jobs", "j", 0, "files processed concurrently")
	pf.BoolVar(&flags.fit, "fit", false, "scale outputs into the preview box")
	pf.StringVar(&flags.ext, "ext", ".png", "output format extension")
	pf.BoolVar(&flags.pair, "pair", false, "write every output as both JPEG and PNG")
	pf.BoolVar(&flags.resize, "resize", false, "resize inputs to the configured input size on load")

	root.AddCommand(
		newStepCommand(&flags, "transform", "Apply an intensity transform", "transform"),
		newStepCommand(&flags, "filter", "Apply a spatial filter", "filter"),
		newFrequencyCommand(&flags),
		newMorphologyCommand(&flags),
		newSpectrumCommand(&flags),
		newChannelsCommand(&flags),
		newRunCommand(&flags),
		newBenchCommand(&flags),
		newSessionCommand(&flags),
		newOpsCommand(),
		newConfigCommand(&flags),
	)
	return root
}

func (f *rootFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if f.codec != "" {
		cfg.Codec = f.codec
	}
	if f.resize {
		cfg.Input.Resize = true
	}
	return cfg, cfg.Validate()
}

// withApp builds the application, listens for signals for the duration of
// fn and runs the shutdown sequence afterwards.
func (f *rootFlags) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.Application) error) error {
	cfg, err := f.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.NewApplication(cmd.Context(), cfg, app.Options{
		LogOutput: cmd.ErrOrStderr(),
		OutputDir: f.outDir,
		Jobs:      f.jobs,
	})
	if err != nil {
		return err
	}
	defer a.Close()
	a.Shutdown.Listen()

	return fn(a.Context(), a)
}

func (f *rootFlags) writeOptions(sheet bool) app.WriteOptions {
	return app.WriteOptions{Ext: f.ext, Fit: f.fit, Sheet: sheet, Pair: f.pair}
}

func (f *rootFlags) runJob(cmd *cobra.Command, args []string, sheet bool, build func(a *app.Application) (app.Job, error)) error {
	return f.withApp(cmd, func(ctx context.Context, a *app.Application) error {
		job, err := build(a)
		if err != nil {
			return err
		}
		inputs, err := a.Inputs(args)
		if err != nil {
			return err
		}
		paths, err := a.ProcessFiles(ctx, inputs, job, f.writeOptions(sheet))
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	})
}

func newStepCommand(flags *rootFlags, use, short, category string) *cobra.Command {
	var op string
	cmd := &cobra.Command{
		Use:   use + " [images...]",
		Short: short,
		Example: fmt.Sprintf("  %s %s --op %s in.png", app.AppName, use,
			map[string]string{"transform": "gamma:gamma=0.5", "filter": "median:k=5"}[category]),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c, err := operations.Category(opName(op)); err != nil {
				return err
			} else if c != category {
				return fmt.Errorf("%q is a %s operation, not a %s", op, c, category)
			}
			return flags.runJob(cmd, args, false, func(a *app.Application) (app.Job, error) {
				return a.StepJob(op)
			})
		},
	}
	cmd.Flags().StringVar(&op, "op", "", "operation, e.g. name:key=value,...")
	_ = cmd.MarkFlagRequired("op")
	return cmd
}

func opName(spec string) string {
	name, _, _ := strings.Cut(spec, ":")
	return strings.ToLower(strings.TrimSpace(name))
}

func newFrequencyCommand(flags *rootFlags) *cobra.Command {
	var (
		op        string
		composite float64
	)
	cmd := &cobra.Command{
		Use:     "freq [images...]",
		Short:   "Filter in the frequency domain",
		Example: "  xla freq --op blpf:d0=30,n=2 in.png\n  xla freq --composite 30 in.png",
		RunE: func(cmd *cobra.Command, args []string) error {
			if composite > 0 {
				return flags.runJob(cmd, args, false, func(a *app.Application) (app.Job, error) {
					return a.CompositeJob(composite), nil
				})
			}
			if op == "" {
				return fmt.Errorf("either --op or --composite is required")
			}
			return flags.runJob(cmd, args, false, func(a *app.Application) (app.Job, error) {
				return a.FrequencyJob(op)
			})
		},
	}
	cmd.Flags().StringVar(&op, "op", "", "ilpf, ihpf, glpf, ghpf, blpf or bhpf with d0= and n=")
	cmd.Flags().Float64Var(&composite, "composite", 0, "apply GLPF then GHPF at this cutoff")
	return cmd
}

func newMorphologyCommand(flags *rootFlags) *cobra.Command {
	var (
		op    string
		sheet bool
	)
	cmd := &cobra.Command{
		Use:     "morph [images...]",
		Short:   "Binary morphology with labelled intermediate steps",
		Example: "  xla morph --op open:shape=ellipse,size=5,i=2 --sheet in.png",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runJob(cmd, args, sheet, func(a *app.Application) (app.Job, error) {
				return a.MorphologyJob(op)
			})
		},
	}
	cmd.Flags().StringVar(&op, "op", "", "erode, dilate, open, close or boundary with shape=, size=, t=, i=")
	cmd.Flags().BoolVar(&sheet, "sheet", false, "write a contact sheet instead of one file per step")
	_ = cmd.MarkFlagRequired("op")
	return cmd
}

func newSpectrumCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "spectrum [images...]",
		Short: "Write the centred log-magnitude spectrum",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runJob(cmd, args, false, func(a *app.Application) (app.Job, error) {
				return a.SpectrumJob(), nil
			})
		},
	}
}

func newChannelsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "channels [images...]",
		Short: "Split into red, green and blue gray images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runJob(cmd, args, false, func(a *app.Application) (app.Job, error) {
				return a.ChannelsJob(), nil
			})
		},
	}
}

func newRunCommand(flags *rootFlags) *cobra.Command {
	var (
		steps []string
		all   bool
		sheet bool
	)
	cmd := &cobra.Command{
		Use:     "run [images...]",
		Short:   "Run a chain of operations",
		Example: "  xla run -s negative -s median:k=5 -s glpf:d0=20 --all in.png",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runJob(cmd, args, sheet, func(a *app.Application) (app.Job, error) {
				return a.ChainJob(steps, all || sheet)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&steps, "step", "s", nil, "operation, repeatable, applied in order")
	cmd.Flags().BoolVar(&all, "all", false, "write every intermediate result")
	cmd.Flags().BoolVar(&sheet, "sheet", false, "write a contact sheet of every step")
	_ = cmd.MarkFlagRequired("step")
	return cmd
}

func newBenchCommand(flags *rootFlags) *cobra.Command {
	bench := &cobra.Command{
		Use:   "bench",
		Short: "Time spatial against frequency filtering",
	}

	var chart string
	compare := &cobra.Command{
		Use:     "compare <image>",
		Short:   "Time each filter at each kernel size",
		Example: "  xla bench compare --chart out/bench.png in.png",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				img, err := a.LoadImage(args[0])
				if err != nil {
					return err
				}
				b := a.Config.Benchmark
				ms, err := a.Bench.Compare(ctx, img, benchmark.Plan{
					Spatial:     b.Filters,
					Frequency:   b.Frequency,
					KernelSizes: b.KernelSizes,
					Runs:        b.Runs,
					Order:       a.Config.Defaults.Order,
				})
				if err != nil {
					return err
				}
				if err := benchmark.WriteTable(cmd.OutOrStdout(), ms); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
				fastest := benchmark.Fastest(ms)
				for _, k := range b.KernelSizes {
					if m, ok := fastest[k]; ok {
						fmt.Fprintf(cmd.OutOrStdout(), "k=%d fastest: %s (%.3fms)\n", k, m.Operator, m.MeanMs)
					}
				}
				if chart != "" {
					return a.WriteBenchmarkChart(chart, ms)
				}
				return nil
			})
		},
	}
	compare.Flags().StringVar(&chart, "chart", "", "also plot mean times on a log scale to this file (.png, .svg, .pdf)")

	var (
		d0          float64
		passes      int
		checkpoints []int
	)
	iterate := &cobra.Command{
		Use:   "iterate [images...]",
		Short: "Apply GHPF repeatedly and save checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runJob(cmd, args, false, func(a *app.Application) (app.Job, error) {
				b := a.Config.Benchmark
				if cmd.Flags().Changed("d0") {
					b.D0 = d0
				}
				if cmd.Flags().Changed("passes") {
					b.Passes = passes
				}
				if cmd.Flags().Changed("checkpoints") {
					b.Checkpoints = checkpoints
				}
				return a.IterateJob(b.D0, b.Passes, b.Checkpoints), nil
			})
		},
	}
	iterate.Flags().Float64Var(&d0, "d0", 0, "cutoff, defaults to the configured value")
	iterate.Flags().IntVar(&passes, "passes", 0, "number of passes")
	iterate.Flags().IntSliceVar(&checkpoints, "checkpoints", nil, "passes to save")

	bench.AddCommand(compare, iterate)
	return bench
}

func newSessionCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "session [image]",
		Short: "Interactive preview, apply and undo over stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				in := a.NewInteractive(cmd.OutOrStdout())
				if len(args) == 1 {
					if err := in.Exec(ctx, "load", args[0]); err != nil {
						return err
					}
				}
				return in.Run(ctx, cmd.InOrStdin())
			})
		},
	}
}

func newOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List operations by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range operations.Names() {
				c, err := operations.Category(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", c, name)
			}
			return nil
		},
	}
}

func newConfigCommand(flags *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			data, err := config.Encode(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "yaml or toml")
	return cmd
}

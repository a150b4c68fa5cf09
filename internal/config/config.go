// Package config holds runtime settings: logging, codec choice, history
// depth, benchmark sweeps and the default operator parameters.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/operations"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/frequency"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/morphology"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/spatial"
)

const (
	CodecNative = "native"
	CodecOpenCV = "opencv"
)

type Config struct {
	Log       LogConfig           `yaml:"log" toml:"log"`
	Codec     string              `yaml:"codec" toml:"codec"`
	Jobs      int                 `yaml:"jobs" toml:"jobs"` // concurrent files; 0 is one per CPU
	Paths     PathConfig          `yaml:"paths" toml:"paths"`
	Input     InputConfig         `yaml:"input" toml:"input"`
	Preview   PreviewConfig       `yaml:"preview" toml:"preview"`
	History   HistoryConfig       `yaml:"history" toml:"history"`
	Benchmark BenchmarkConfig     `yaml:"benchmark" toml:"benchmark"`
	Defaults  operations.Defaults `yaml:"defaults" toml:"defaults"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type PathConfig struct {
	InputDir   string   `yaml:"input_dir" toml:"input_dir"`
	OutputDir  string   `yaml:"output_dir" toml:"output_dir"`
	Extensions []string `yaml:"extensions" toml:"extensions"`
}

// InputConfig resizes every loaded image to Width×Height when Resize is
// set, so a batch of photos shares one frame size.
type InputConfig struct {
	Resize bool `yaml:"resize" toml:"resize"`
	Width  int  `yaml:"width" toml:"width"`
	Height int  `yaml:"height" toml:"height"`
}

// PreviewConfig is the bounding box display copies are fitted into.
type PreviewConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// HistoryConfig bounds the undo stack. Zero means unbounded.
type HistoryConfig struct {
	Depth int `yaml:"depth" toml:"depth"`
}

type BenchmarkConfig struct {
	Filters     []string `yaml:"filters" toml:"filters"`
	Frequency   []string `yaml:"frequency" toml:"frequency"`
	KernelSizes []int    `yaml:"kernel_sizes" toml:"kernel_sizes"`
	Runs        int      `yaml:"runs" toml:"runs"`
	D0          float64  `yaml:"d0" toml:"d0"`
	Passes      int      `yaml:"passes" toml:"passes"`
	Checkpoints []int    `yaml:"checkpoints" toml:"checkpoints"`
}

func DefaultConfig() Config {
	return Config{
		Log:   LogConfig{Level: "info", Format: "console"},
		Codec: CodecNative,
		Paths: PathConfig{
			InputDir:   "./resources/input_images",
			OutputDir:  "./resources/output_images",
			Extensions: []string{".jpg", ".jpeg", ".png"},
		},
		Input:   InputConfig{Width: 1200, Height: 627},
		Preview: PreviewConfig{Width: 1200, Height: 627},
		History: HistoryConfig{Depth: 20},
		Benchmark: BenchmarkConfig{
			Filters:     []string{"gaussian", "mean", "median", "min", "max"},
			Frequency:   []string{"glpf", "blpf"},
			KernelSizes: []int{3, 5, 9, 15},
			Runs:        3,
			D0:          30,
			Passes:      100,
			Checkpoints: []int{1, 10, 100},
		},
		Defaults: operations.DefaultParameters(),
	}
}

// ProductionConfig logs JSON at warning level and keeps a shallow history.
func ProductionConfig() Config {
	cfg := DefaultConfig()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}
	cfg.History.Depth = 5
	return cfg
}

// Load starts from DefaultConfig, overlays the file at path when one is
// given, then applies XLA_* environment overrides and validates the result.
// Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if os.Getenv("XLA_PRODUCTION") == "true" {
		cfg = ProductionConfig()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := Decode(data, formatOf(path), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// Decode overlays data in the given format ("yaml" or "toml") onto cfg.
// Keys absent from data keep their current values.
func Decode(data []byte, format string, cfg *Config) error {
	switch format {
	case "toml":
		_, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		return err
	case "yaml", "yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	return fmt.Errorf("unsupported config format: %s", format)
}

// Encode renders cfg in the given format.
func Encode(cfg Config, format string) ([]byte, error) {
	switch format {
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml", "yml", "":
		return yaml.Marshal(cfg)
	}
	return nil, fmt.Errorf("unsupported config format: %s", format)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("XLA_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("XLA_JSON_LOGS"); ok && v == "true" {
		c.Log.Format = "json"
	}
	if v, ok := lookup("XLA_CODEC"); ok {
		c.Codec = v
	}
	if v, ok := lookup("XLA_RESIZE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("XLA_RESIZE: %w", err)
		}
		c.Input.Resize = b
	}
	if v, ok := lookup("XLA_HISTORY_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("XLA_HISTORY_DEPTH: %w", err)
		}
		c.History.Depth = n
	}
	return nil
}

// Validate checks every section and reports the first problem found.
func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	switch c.Codec {
	case CodecNative, CodecOpenCV:
	default:
		return fmt.Errorf("unsupported codec: %s", c.Codec)
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return operr.Parameter("preview", fmt.Sprintf("%dx%d", c.Preview.Width, c.Preview.Height), "positive dimensions")
	}
	if c.Input.Resize && (c.Input.Width <= 0 || c.Input.Height <= 0) {
		return operr.Parameter("input", fmt.Sprintf("%dx%d", c.Input.Width, c.Input.Height), "positive dimensions")
	}
	if c.Jobs < 0 {
		return operr.Parameter("jobs", c.Jobs, ">= 0")
	}
	if c.History.Depth < 0 {
		return operr.Parameter("history.depth", c.History.Depth, ">= 0")
	}
	if err := c.Benchmark.validate(); err != nil {
		return err
	}
	return validateDefaults(c.Defaults)
}

func (b BenchmarkConfig) validate() error {
	for _, name := range b.Filters {
		if _, err := operations.NewFilter(name, 3); err != nil {
			return fmt.Errorf("benchmark.filters: %w", err)
		}
	}
	for _, name := range b.Frequency {
		if _, err := frequency.ParseKind(name); err != nil {
			return fmt.Errorf("benchmark.frequency: %w", err)
		}
	}
	for _, k := range b.KernelSizes {
		if err := spatial.ValidateKernelSize(k); err != nil {
			return fmt.Errorf("benchmark.kernel_sizes: %w", err)
		}
	}
	if b.Runs < 1 {
		return operr.Parameter("benchmark.runs", b.Runs, ">= 1")
	}
	if b.Passes < 1 {
		return operr.Wrap(operr.ErrInvalidIterationCount, "benchmark.passes=%d", b.Passes)
	}
	if b.D0 < 0 {
		return operr.Parameter("benchmark.d0", b.D0, ">= 0")
	}
	return nil
}

func validateDefaults(d operations.Defaults) error {
	if err := spatial.ValidateKernelSize(d.KernelSize); err != nil {
		return fmt.Errorf("defaults.kernel_size: %w", err)
	}
	if d.Threshold < 0 || d.Threshold > 255 {
		return operr.Parameter("defaults.threshold", d.Threshold, "in [0,255]")
	}
	if !(d.ClaheClip > 0) || d.ClaheTile < 1 {
		return operr.Parameter("defaults.clahe", fmt.Sprintf("clip=%g tile=%d", d.ClaheClip, d.ClaheTile), "clip > 0 and tile >= 1")
	}
	if d.Order < 1 {
		return operr.Wrap(operr.ErrInvalidOrder, "defaults.order=%d", d.Order)
	}
	if d.Iterations < 1 {
		return operr.Wrap(operr.ErrInvalidIterationCount, "defaults.iterations=%d", d.Iterations)
	}
	if !strings.EqualFold(d.ElementShape, "diagonal") {
		if _, err := morphology.ParseShape(d.ElementShape); err != nil {
			return fmt.Errorf("defaults.element_shape: %w", err)
		}
	}
	return nil
}
